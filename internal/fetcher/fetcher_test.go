package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"plants.json":  FormatJSON,
		"plants.CSV":   FormatCSV,
		"plants.tsv":   FormatTSV,
		"plants.xlsx":  FormatXLSX,
		"names.txt":    FormatText,
		"names":        FormatText,
		"dir/a.b.list": FormatText,
	}
	for path, want := range tests {
		got, err := DetectFormat(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := DetectFormat("plants.xml")
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestStreamRows_CSV(t *testing.T) {
	path := writeTestFile(t, "plants.csv", "name,type\n Rose ,Shrub\n,\n")
	rows, err := Collect(StreamRows(context.Background(), path))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "type"}, {"Rose", "Shrub"}}, rows)
}

func TestStreamRows_TSV(t *testing.T) {
	path := writeTestFile(t, "plants.tsv", "name\ttype\nMint\tHerb\n")
	rows, err := Collect(StreamRows(context.Background(), path))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "type"}, {"Mint", "Herb"}}, rows)
}

func TestStreamRows_Text(t *testing.T) {
	path := writeTestFile(t, "names.txt", "# batch\nrose\n\nholy basil\n")
	rows, err := Collect(StreamRows(context.Background(), path))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"rose"}, {"holy basil"}}, rows)
}

func TestStreamRows_XLSX(t *testing.T) {
	path := createTestXLSX(t, "Sheet1", [][]string{{"name"}, {"Aloe"}})
	rows, err := Collect(StreamRows(context.Background(), path))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name"}, {"Aloe"}}, rows)
}

func TestStreamRows_Errors(t *testing.T) {
	_, err := Collect(StreamRows(context.Background(), "plants.json"))
	assert.ErrorContains(t, err, "not a tabular file")

	_, err = Collect(StreamRows(context.Background(), filepath.Join(t.TempDir(), "missing.csv")))
	assert.ErrorContains(t, err, "fetcher: open")

	_, err = Collect(StreamRows(context.Background(), "plants.pdf"))
	assert.ErrorContains(t, err, "unsupported file type")
}
