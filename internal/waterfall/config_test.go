package waterfall

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/plantcare/internal/waterfall/provider"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "waterfall.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
waterfall:
  defaults:
    second_pass: false
  providers:
    perenual: { priority: 5 }
    trefle: { priority: 1, enabled: false }
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.False(t, cfg.SecondPassEnabled())
	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, 5, *cfg.Providers["perenual"].Priority)
	assert.Nil(t, cfg.Providers["perenual"].Enabled)
	assert.False(t, *cfg.Providers["trefle"].Enabled)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "waterfall: [not, a, map]"))
	assert.ErrorContains(t, err, "waterfall: parse config")

	_, err = LoadConfig(writeConfig(t, "waterfall:\n  providers:\n    trefle: { priority: -1 }\n"))
	assert.ErrorContains(t, err, "negative priority")
}

func TestConfig_Apply(t *testing.T) {
	no, yes, two := false, true, 2
	cfg := &Config{Providers: map[string]ProviderConfig{
		"perenual": {Enabled: &no},
		"trefle":   {Priority: &two, Enabled: &yes},
	}}

	d := cfg.Apply(provider.Descriptor{Name: "perenual", Priority: 1, Enabled: true})
	assert.False(t, d.Enabled)
	assert.Equal(t, 1, d.Priority)

	d = cfg.Apply(provider.Descriptor{Name: "trefle", Priority: 7, Enabled: false})
	assert.False(t, d.Enabled, "overrides never enable a provider without credentials")
	assert.Equal(t, 2, d.Priority)

	d = cfg.Apply(provider.Descriptor{Name: "opentree", Priority: 3, Enabled: true})
	assert.Equal(t, provider.Descriptor{Name: "opentree", Priority: 3, Enabled: true}, d)
}

func TestConfig_NilIsNoop(t *testing.T) {
	var cfg *Config
	d := provider.Descriptor{Name: "perenual", Priority: 1, Enabled: true}
	assert.Equal(t, d, cfg.Apply(d))
	assert.True(t, cfg.SecondPassEnabled())
}
