package main

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/plantcare/internal/fetcher"
	"github.com/sells-group/plantcare/internal/plantcare"
)

var (
	batchFile        string
	batchColumn      int
	batchHeader      bool
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Identify every plant name in a CSV, XLSX or text file",
	Long:  "Reads plant names from one column of a file and prints one JSON result per line, in file order. All names share one response cache.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if batchConcurrency > 0 {
			cfg.Batch.MaxConcurrent = batchConcurrency
		}

		names, err := readNames(ctx, batchFile, batchColumn, batchHeader)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			zap.L().Info("no plant names found", zap.String("file", batchFile))
			return nil
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		results := env.Service.IdentifyMany(ctx, names)
		if err := writeResults(cmd.OutOrStdout(), results); err != nil {
			return err
		}

		stats := env.Cache.Stats()
		zap.L().Info("batch complete",
			zap.Int("names", len(names)),
			zap.Uint64("cache_hits", stats.Hits),
			zap.Uint64("cache_misses", stats.Misses),
		)
		return nil
	},
}

// readNames returns the non-blank cells of one column. With header set the
// first row is skipped.
func readNames(ctx context.Context, path string, column int, header bool) ([]string, error) {
	if column < 0 {
		return nil, eris.Errorf("batch: invalid column %d", column)
	}
	rows, err := fetcher.Collect(fetcher.StreamRows(ctx, path))
	if err != nil {
		return nil, eris.Wrapf(err, "batch: read %s", path)
	}
	if header && len(rows) > 0 {
		rows = rows[1:]
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if column >= len(row) {
			continue
		}
		if name := strings.TrimSpace(row[column]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// writeResults prints one compact JSON object per line.
func writeResults(w io.Writer, results []plantcare.BatchResult) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "batch: write result")
		}
	}
	return nil
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "file of plant names (.csv, .tsv, .xlsx, .txt)")
	batchCmd.Flags().IntVar(&batchColumn, "column", 0, "zero-based column holding the names")
	batchCmd.Flags().BoolVar(&batchHeader, "header", false, "skip the first row")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max names resolved at once (default batch.max_concurrent)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
