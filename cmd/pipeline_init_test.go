package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/plantcare/internal/config"
	"github.com/sells-group/plantcare/internal/model"
	"github.com/sells-group/plantcare/internal/resilience"
	"github.com/sells-group/plantcare/internal/waterfall"
	"github.com/sells-group/plantcare/internal/waterfall/provider"
)

// useTestConfig installs the default configuration, with the bundled seed
// file and no network providers, as the global cfg.
func useTestConfig(t *testing.T) *config.Config {
	t.Helper()
	seed := seedPath(t)

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	loaded, err := config.Load()
	require.NoError(t, err)
	loaded.Catalog.SeedPath = seed
	loaded.Providers.OpenTree.Enabled = false

	prev := cfg
	cfg = loaded
	t.Cleanup(func() { cfg = prev })
	return loaded
}

func TestPipelineEnv_CloseEmpty(t *testing.T) {
	env := &pipelineEnv{}
	assert.NotPanics(t, env.Close)
}

func TestInitPipeline_MemoryCatalog(t *testing.T) {
	useTestConfig(t)
	ctx := context.Background()

	env, err := initPipeline(ctx)
	require.NoError(t, err)
	defer env.Close()

	n, err := env.Catalog.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)

	rec, err := env.Service.IdentifyPlant(ctx, "  ROSE ")
	require.NoError(t, err)
	assert.Equal(t, model.SourceLocalCatalog, rec.Provenance.SourceKind)
	assert.Equal(t, "Rosa", rec.ScientificName)

	assert.Empty(t, env.Resolver.Providers())
	assert.Len(t, env.Registry.List(), 3)
}

func TestInitPipeline_MissingSeedFile(t *testing.T) {
	c := useTestConfig(t)
	c.Catalog.SeedPath = filepath.Join(t.TempDir(), "missing.json")
	ctx := context.Background()

	env, err := initPipeline(ctx)
	require.NoError(t, err)
	defer env.Close()

	n, err := env.Catalog.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	rec, err := env.Service.IdentifyPlant(ctx, "rose")
	require.NoError(t, err)
	assert.Equal(t, model.SourceGenericTemplate, rec.Provenance.SourceKind)
}

func TestInitPipeline_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "unknown driver",
			mutate:  func(c *config.Config) { c.Catalog.Driver = "mongo" },
			wantErr: "config: validate",
		},
		{
			name:    "sqlite without url",
			mutate:  func(c *config.Config) { c.Catalog.Driver = "sqlite" },
			wantErr: "config: validate",
		},
		{
			name: "invalid seed file",
			mutate: func(c *config.Config) {
				path := filepath.Join(t.TempDir(), "bad.json")
				require.NoError(t, os.WriteFile(path, []byte(`{"plants": [{"type": "Herb"}]}`), 0644))
				c.Catalog.SeedPath = path
			},
			wantErr: "seed record 1",
		},
		{
			name:    "missing alias table",
			mutate:  func(c *config.Config) { c.Normalizer.AliasPath = filepath.Join(t.TempDir(), "aliases.yaml") },
			wantErr: "load alias table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := useTestConfig(t)
			tt.mutate(c)

			env, err := initPipeline(context.Background())
			require.Error(t, err)
			assert.Nil(t, env)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitPipeline_BadWaterfallConfigIsIgnored(t *testing.T) {
	c := useTestConfig(t)
	c.Waterfall.ConfigPath = filepath.Join(t.TempDir(), "missing.yaml")

	env, err := initPipeline(context.Background())
	require.NoError(t, err)
	env.Close()
}

func testProvidersConfig() config.ProvidersConfig {
	return config.ProvidersConfig{
		Perenual:    config.ProviderConfig{BaseURL: "http://perenual.test", Key: "pk", Priority: 1, RateLimit: 5},
		Trefle:      config.ProviderConfig{BaseURL: "http://trefle.test", Key: config.PlaceholderKey, Priority: 2, RateLimit: 5},
		OpenTree:    config.ProviderConfig{BaseURL: "http://opentree.test", Enabled: true, Priority: 3, RateLimit: 5},
		TimeoutSecs: 5,
	}
}

func descriptors(ps []provider.Provider) map[string]provider.Descriptor {
	out := make(map[string]provider.Descriptor, len(ps))
	for _, p := range ps {
		out[p.Descriptor().Name] = p.Descriptor()
	}
	return out
}

func TestBuildProviders_Enablement(t *testing.T) {
	breakers := resilience.NewServiceBreakers(resilience.DefaultCircuitBreakerConfig())

	got := descriptors(buildProviders(testProvidersConfig(), nil, breakers))
	require.Len(t, got, 3)

	assert.True(t, got["perenual"].Enabled)
	assert.Equal(t, 1, got["perenual"].Priority)
	assert.False(t, got["trefle"].Enabled, "placeholder key must not enable trefle")
	assert.True(t, got["opentree"].Enabled)
	assert.Equal(t, 3, got["opentree"].Priority)
}

func TestBuildProviders_WaterfallOverrides(t *testing.T) {
	breakers := resilience.NewServiceBreakers(resilience.DefaultCircuitBreakerConfig())
	off, on, first := false, true, 0

	pc := testProvidersConfig()
	pc.OpenTree.Enabled = false
	wf := &waterfall.Config{Providers: map[string]waterfall.ProviderConfig{
		"perenual": {Enabled: &off},
		"trefle":   {Enabled: &on},
		"opentree": {Enabled: &on, Priority: &first},
	}}

	got := descriptors(buildProviders(pc, wf, breakers))
	assert.False(t, got["perenual"].Enabled)
	assert.False(t, got["trefle"].Enabled, "overrides never enable a provider without a key")
	assert.False(t, got["opentree"].Enabled)
	assert.Equal(t, 0, got["opentree"].Priority)
}
