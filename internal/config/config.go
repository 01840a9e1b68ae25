// Package config loads plantcare settings from config.yaml and PLANTCARE_*
// environment variables, and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// PlaceholderKey is the sample credential shipped in example configs. A
// provider configured with it stays disabled.
const PlaceholderKey = "your_key_here"

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Catalog    CatalogConfig    `yaml:"catalog" mapstructure:"catalog"`
	Providers  ProvidersConfig  `yaml:"providers" mapstructure:"providers"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Normalizer NormalizerConfig `yaml:"normalizer" mapstructure:"normalizer"`
	Waterfall  WaterfallConfig  `yaml:"waterfall" mapstructure:"waterfall"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// CatalogConfig selects the local plant catalog backend.
type CatalogConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver" validate:"oneof=memory sqlite postgres"`
	SeedPath    string `yaml:"seed_path" mapstructure:"seed_path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url" validate:"required_unless=Driver memory"`
	SearchLimit int    `yaml:"search_limit" mapstructure:"search_limit" validate:"gte=1,lte=100"`
	PoolSize    int32  `yaml:"pool_size" mapstructure:"pool_size" validate:"gte=0"`
}

// ProviderConfig configures one botanical data provider.
type ProviderConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Key       string  `yaml:"key" mapstructure:"key"`
	Enabled   bool    `yaml:"enabled" mapstructure:"enabled"`
	Priority  int     `yaml:"priority" mapstructure:"priority" validate:"gte=0"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit" validate:"gte=0"`
}

// HasKey reports whether a usable credential is configured.
func (p ProviderConfig) HasKey() bool {
	key := strings.TrimSpace(p.Key)
	return key != "" && key != PlaceholderKey
}

// CircuitConfig configures the per-provider circuit breakers.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold" validate:"gte=1"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs" validate:"gte=1"`
}

// ProvidersConfig holds provider credentials and shared call settings.
type ProvidersConfig struct {
	Perenual    ProviderConfig `yaml:"perenual" mapstructure:"perenual"`
	Trefle      ProviderConfig `yaml:"trefle" mapstructure:"trefle"`
	OpenTree    ProviderConfig `yaml:"opentree" mapstructure:"opentree"`
	TimeoutSecs int            `yaml:"timeout_secs" mapstructure:"timeout_secs" validate:"gte=1,lte=120"`
	SearchLimit int            `yaml:"search_limit" mapstructure:"search_limit" validate:"gte=1,lte=50"`
	Circuit     CircuitConfig  `yaml:"circuit" mapstructure:"circuit"`
}

// Timeout returns the per-call provider timeout.
func (p ProvidersConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSecs) * time.Second
}

// CacheConfig configures the provider response cache.
type CacheConfig struct {
	TTLHours          int `yaml:"ttl_hours" mapstructure:"ttl_hours" validate:"gte=1"`
	SweepIntervalMins int `yaml:"sweep_interval_mins" mapstructure:"sweep_interval_mins" validate:"gte=1"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// SweepInterval returns the background sweep period.
func (c CacheConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMins) * time.Minute
}

// NormalizerConfig configures plant name correction.
type NormalizerConfig struct {
	// AliasPath points at a YAML alias table. Empty uses the built-in table.
	AliasPath string  `yaml:"alias_path" mapstructure:"alias_path"`
	Threshold float64 `yaml:"threshold" mapstructure:"threshold" validate:"gt=0,lte=1"`
}

// WaterfallConfig points at the optional waterfall override file.
type WaterfallConfig struct {
	ConfigPath string `yaml:"config_path" mapstructure:"config_path"`
}

// BatchConfig configures batch identification.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"gte=1,lte=64"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// working directory for an optional config.yaml; a named file must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("PLANTCARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("catalog.driver", "memory")
	v.SetDefault("catalog.seed_path", "testdata/plants.json")
	v.SetDefault("catalog.database_url", "")
	v.SetDefault("catalog.search_limit", 10)
	v.SetDefault("catalog.pool_size", 0)
	v.SetDefault("providers.perenual.base_url", "https://perenual.com/api")
	v.SetDefault("providers.perenual.key", "")
	v.SetDefault("providers.perenual.priority", 1)
	v.SetDefault("providers.perenual.rate_limit", 5)
	v.SetDefault("providers.trefle.base_url", "https://trefle.io/api/v1")
	v.SetDefault("providers.trefle.key", "")
	v.SetDefault("providers.trefle.priority", 2)
	v.SetDefault("providers.trefle.rate_limit", 5)
	v.SetDefault("providers.opentree.base_url", "https://api.opentreeoflife.org/v3")
	v.SetDefault("providers.opentree.enabled", true)
	v.SetDefault("providers.opentree.priority", 3)
	v.SetDefault("providers.opentree.rate_limit", 5)
	v.SetDefault("providers.timeout_secs", 10)
	v.SetDefault("providers.search_limit", 5)
	v.SetDefault("providers.circuit.failure_threshold", 5)
	v.SetDefault("providers.circuit.reset_timeout_secs", 60)
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("cache.sweep_interval_mins", 60)
	v.SetDefault("normalizer.alias_path", "")
	v.SetDefault("normalizer.threshold", 0.7)
	v.SetDefault("waterfall.config_path", "")
	v.SetDefault("batch.max_concurrent", 5)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges and cross-field requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return eris.Wrap(err, "config: validate")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
