package namematch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAliases_PreservesOrder(t *testing.T) {
	t.Parallel()

	data := []byte(`
aliases:
  Zinnia: [zinia]
  aloe vera: [aloe, "Alovera"]
  basil: []
`)
	table, err := ParseAliases(data)
	require.NoError(t, err)
	require.Len(t, table, 3)

	assert.Equal(t, "zinnia", table[0].Canonical)
	assert.Equal(t, "aloe vera", table[1].Canonical)
	assert.Equal(t, []string{"aloe", "alovera"}, table[1].Variants)
	assert.Equal(t, "basil", table[2].Canonical)
	assert.Empty(t, table[2].Variants)
}

func TestParseAliases_WithoutWrapper(t *testing.T) {
	t.Parallel()

	table, err := ParseAliases([]byte("snake plant: [sansevieria]\nfern: [ferns]\n"))
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, "snake plant", table[0].Canonical)
	assert.Equal(t, "fern", table[1].Canonical)
}

func TestParseAliases_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not a mapping", "- rose\n- fern\n"},
		{"duplicate", "rose: [roze]\nRose: [roos]\n"},
		{"variants not a list", "rose: {a: b}\n"},
		{"invalid yaml", "rose: [roze\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAliases([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadAliases(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aliases:\n  mint: [pudina]\n"), 0o644))

	table, err := LoadAliases(path)
	require.NoError(t, err)
	n := New(table)
	assert.Equal(t, "mint", n.Normalize("Pudina"))

	_, err = LoadAliases(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
