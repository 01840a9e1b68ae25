package waterfall

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/plantcare/internal/waterfall/provider"
)

// Config overrides provider ordering for the identification waterfall.
type Config struct {
	Defaults  DefaultConfig             `yaml:"defaults"`
	Providers map[string]ProviderConfig `yaml:"providers"`
}

// DefaultConfig holds global waterfall settings.
type DefaultConfig struct {
	// SecondPass enables the raw-name retry after a corrected pass misses.
	SecondPass *bool `yaml:"second_pass"`
}

// ProviderConfig overrides a single provider's descriptor.
type ProviderConfig struct {
	Priority *int  `yaml:"priority"`
	Enabled  *bool `yaml:"enabled"`
}

// LoadConfig reads waterfall config from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "waterfall: read config %s", path)
	}

	// The YAML has a top-level "waterfall" key
	var wrapper struct {
		Waterfall Config `yaml:"waterfall"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "waterfall: parse config")
	}

	cfg := &wrapper.Waterfall
	for name, pc := range cfg.Providers {
		if pc.Priority != nil && *pc.Priority < 0 {
			return nil, eris.Errorf("waterfall: provider %s: negative priority %d", name, *pc.Priority)
		}
	}
	return cfg, nil
}

// SecondPassEnabled reports whether the raw-name pass runs. Defaults to true.
func (c *Config) SecondPassEnabled() bool {
	if c == nil || c.Defaults.SecondPass == nil {
		return true
	}
	return *c.Defaults.SecondPass
}

// Apply returns d with any configured overrides. An override can disable a
// provider but never enables one that lacks credentials.
func (c *Config) Apply(d provider.Descriptor) provider.Descriptor {
	if c == nil {
		return d
	}
	pc, ok := c.Providers[d.Name]
	if !ok {
		return d
	}
	if pc.Priority != nil {
		d.Priority = *pc.Priority
	}
	if pc.Enabled != nil {
		d.Enabled = d.Enabled && *pc.Enabled
	}
	return d
}
