package main

import (
	"context"
	"errors"
	"io/fs"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/plantcare/internal/catalog"
	"github.com/sells-group/plantcare/internal/config"
	"github.com/sells-group/plantcare/internal/namematch"
	"github.com/sells-group/plantcare/internal/plantcare"
	"github.com/sells-group/plantcare/internal/resilience"
	"github.com/sells-group/plantcare/internal/respcache"
	"github.com/sells-group/plantcare/internal/search"
	"github.com/sells-group/plantcare/internal/waterfall"
	"github.com/sells-group/plantcare/internal/waterfall/provider"
	"github.com/sells-group/plantcare/pkg/opentree"
	"github.com/sells-group/plantcare/pkg/perenual"
	"github.com/sells-group/plantcare/pkg/trefle"
)

// pipelineEnv holds the process-lifetime collaborators shared by every
// command: one catalog, one response cache with its sweeper, and the
// provider registry.
type pipelineEnv struct {
	Catalog  catalog.Catalog
	Cache    *respcache.Cache
	Registry *provider.Registry
	Resolver *waterfall.Resolver
	Service  *plantcare.Service
}

// Close stops the cache sweeper and releases the catalog.
func (pe *pipelineEnv) Close() {
	if pe.Cache != nil {
		pe.Cache.Close()
	}
	if pe.Catalog != nil {
		_ = pe.Catalog.Close()
	}
}

// initPipeline opens the catalog, builds the providers and wires the
// resolver, search aggregator and service. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cat, err := initCatalog(ctx)
	if err != nil {
		return nil, err
	}

	normalizer, err := initNormalizer(cfg.Normalizer)
	if err != nil {
		_ = cat.Close()
		return nil, err
	}

	// Waterfall overrides are optional.
	var wfCfg *waterfall.Config
	if cfg.Waterfall.ConfigPath != "" {
		wfCfg, err = waterfall.LoadConfig(cfg.Waterfall.ConfigPath)
		if err != nil {
			zap.L().Warn("waterfall config not loaded, using configured priorities", zap.Error(err))
			wfCfg = nil
		}
	}

	breakers := resilience.NewServiceBreakers(provider.BreakerConfig(
		resilience.FromCircuitConfig(cfg.Providers.Circuit.FailureThreshold, cfg.Providers.Circuit.ResetTimeoutSecs),
	))
	registry := provider.NewRegistry(breakers)
	for _, p := range buildProviders(cfg.Providers, wfCfg, breakers) {
		registry.Register(p)
	}

	cache := respcache.New(respcache.WithTTL(cfg.Cache.TTL()))
	cache.StartSweeper(context.WithoutCancel(ctx), cfg.Cache.SweepInterval())

	resolver := waterfall.NewResolver(cat, normalizer, registry.Identifiers(),
		waterfall.WithCache(cache),
		waterfall.WithConfig(wfCfg),
	)
	aggregator := search.NewAggregator(cat, registry.Searchers(),
		search.WithLocalLimit(cfg.Catalog.SearchLimit),
		search.WithProviderLimit(cfg.Providers.SearchLimit),
	)

	zap.L().Info("pipeline initialized",
		zap.String("catalog", cfg.Catalog.Driver),
		zap.Strings("identifiers", resolver.Providers()),
		zap.Int("searchers", len(registry.Searchers())),
	)

	return &pipelineEnv{
		Catalog:  cat,
		Cache:    cache,
		Registry: registry,
		Resolver: resolver,
		Service: plantcare.New(plantcare.Deps{
			Resolver:      resolver,
			Searcher:      aggregator,
			Suggester:     normalizer,
			Catalog:       cat,
			Providers:     registry,
			MaxConcurrent: cfg.Batch.MaxConcurrent,
		}),
	}, nil
}

// initCatalog opens the configured catalog. The in-memory catalog is loaded
// from the seed file on every start; a missing seed file leaves it empty.
func initCatalog(ctx context.Context) (catalog.Catalog, error) {
	cat, err := catalog.Open(ctx, catalog.Options{
		Driver:   catalog.Driver(cfg.Catalog.Driver),
		DSN:      cfg.Catalog.DatabaseURL,
		PoolSize: cfg.Catalog.PoolSize,
	})
	if err != nil {
		return nil, eris.Wrap(err, "open catalog")
	}

	if cfg.Catalog.Driver != string(catalog.DriverMemory) || cfg.Catalog.SeedPath == "" {
		return cat, nil
	}
	if _, err := catalog.Seed(ctx, cat, cfg.Catalog.SeedPath, true); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			zap.L().Warn("catalog seed file not found, starting empty", zap.String("path", cfg.Catalog.SeedPath))
			return cat, nil
		}
		_ = cat.Close()
		return nil, err
	}
	return cat, nil
}

func initNormalizer(nc config.NormalizerConfig) (*namematch.Normalizer, error) {
	aliases := namematch.DefaultAliases()
	if nc.AliasPath != "" {
		loaded, err := namematch.LoadAliases(nc.AliasPath)
		if err != nil {
			return nil, eris.Wrap(err, "load alias table")
		}
		aliases = loaded
	}
	return namematch.New(aliases, namematch.WithThreshold(nc.Threshold)), nil
}

// buildProviders constructs every provider adapter. Providers without
// credentials are still registered, disabled, so status can report them.
func buildProviders(pc config.ProvidersConfig, wfCfg *waterfall.Config, breakers *resilience.ServiceBreakers) []provider.Provider {
	settings := func(name string, p config.ProviderConfig, enabled bool) provider.Settings {
		return provider.Settings{
			Descriptor: wfCfg.Apply(provider.Descriptor{Name: name, Priority: p.Priority, Enabled: enabled}),
			Timeout:    pc.Timeout(),
			Breaker:    breakers.Get(name),
		}
	}

	perenualClient := perenual.NewClient(pc.Perenual.Key,
		perenual.WithBaseURL(pc.Perenual.BaseURL),
		perenual.WithRateLimit(pc.Perenual.RateLimit),
	)
	trefleClient := trefle.NewClient(pc.Trefle.Key,
		trefle.WithBaseURL(pc.Trefle.BaseURL),
		trefle.WithRateLimit(pc.Trefle.RateLimit),
	)
	opentreeClient := opentree.NewClient(
		opentree.WithBaseURL(pc.OpenTree.BaseURL),
		opentree.WithRateLimit(pc.OpenTree.RateLimit),
	)

	if !pc.Perenual.HasKey() {
		zap.L().Debug("PLANTCARE_PROVIDERS_PERENUAL_KEY not set, Perenual disabled")
	}
	if !pc.Trefle.HasKey() {
		zap.L().Debug("PLANTCARE_PROVIDERS_TREFLE_KEY not set, Trefle disabled")
	}

	return []provider.Provider{
		provider.NewPerenual(perenualClient, settings("perenual", pc.Perenual, pc.Perenual.HasKey())),
		provider.NewTrefle(trefleClient, settings("trefle", pc.Trefle, pc.Trefle.HasKey())),
		provider.NewOpenTree(opentreeClient, settings("opentree", pc.OpenTree, pc.OpenTree.Enabled)),
	}
}
