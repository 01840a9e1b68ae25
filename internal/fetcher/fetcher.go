// Package fetcher streams plant records and name lists out of local data
// files: JSON arrays, delimited text, spreadsheets and plain name lists.
package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Format is a supported input file format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
	FormatText Format = "text"
)

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".txt", ".list", "":
		return FormatText, nil
	default:
		return "", eris.Errorf("fetcher: unsupported file type %q", filepath.Ext(path))
	}
}

// StreamRows streams every row of a tabular file, header included. JSON
// files are not tabular and are rejected; use DecodeJSONArray.
// Both channels are closed when processing completes.
func StreamRows(ctx context.Context, path string) (<-chan []string, <-chan error) {
	format, err := DetectFormat(path)
	if err != nil {
		return failed(err)
	}

	switch format {
	case FormatXLSX:
		return StreamXLSX(ctx, path, XLSXOptions{})
	case FormatJSON:
		return failed(eris.Errorf("fetcher: %s is not a tabular file", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return failed(eris.Wrapf(err, "fetcher: open %s", path))
	}

	opts := CSVOptions{TrimSpace: true, SkipBlank: true}
	switch format {
	case FormatTSV:
		opts.Delimiter = '\t'
	case FormatText:
		opts = CSVOptions{Lines: true, TrimSpace: true, SkipBlank: true, Comment: '#'}
	}

	rowCh, errCh := StreamCSV(ctx, f, opts)
	return closeAfter(ctx, f, rowCh, errCh)
}

func failed(err error) (<-chan []string, <-chan error) {
	rowCh := make(chan []string)
	errCh := make(chan error, 1)
	errCh <- err
	close(rowCh)
	close(errCh)
	return rowCh, errCh
}

// closeAfter closes f once the producer has finished. Rows are dropped
// after ctx is done.
func closeAfter(ctx context.Context, f *os.File, rows <-chan []string, errs <-chan error) (<-chan []string, <-chan error) {
	rowCh := make(chan []string)
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		defer f.Close() //nolint:errcheck
		defer close(rowCh)
		for row := range rows {
			select {
			case rowCh <- row:
			case <-ctx.Done():
			}
		}
		for err := range errs {
			errCh <- err
		}
	}()
	return rowCh, errCh
}

// Collect drains a row stream into memory.
func Collect(rows <-chan []string, errs <-chan error) ([][]string, error) {
	var out [][]string
	for row := range rows {
		out = append(out, row)
	}
	for err := range errs {
		if err != nil {
			return out, err
		}
	}
	return out, nil
}
