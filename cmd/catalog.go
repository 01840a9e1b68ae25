package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/plantcare/internal/catalog"
)

var (
	seedFile    string
	seedReplace bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local plant catalog",
}

var catalogMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the catalog tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openPersistentCatalog(cmd.Context())
		if err != nil {
			return err
		}
		defer cat.Close() //nolint:errcheck

		zap.L().Info("catalog migrated", zap.String("driver", cfg.Catalog.Driver))
		return nil
	},
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load plants from a JSON, CSV or XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cat, err := openPersistentCatalog(ctx)
		if err != nil {
			return err
		}
		defer cat.Close() //nolint:errcheck

		n, err := catalog.Seed(ctx, cat, seedFile, seedReplace)
		if err != nil {
			return err
		}
		total, err := cat.Count(ctx)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"file":    seedFile,
			"loaded":  n,
			"total":   total,
			"replace": seedReplace,
		})
	},
}

// openPersistentCatalog opens and migrates a SQLite or Postgres catalog.
// The in-memory catalog does not outlive the process, so it is rejected.
func openPersistentCatalog(ctx context.Context) (catalog.Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if catalog.Driver(cfg.Catalog.Driver) == catalog.DriverMemory {
		return nil, eris.New("catalog: set catalog.driver to sqlite or postgres (PLANTCARE_CATALOG_DRIVER)")
	}
	return catalog.Open(ctx, catalog.Options{
		Driver:   catalog.Driver(cfg.Catalog.Driver),
		DSN:      cfg.Catalog.DatabaseURL,
		PoolSize: cfg.Catalog.PoolSize,
	})
}

func init() {
	catalogSeedCmd.Flags().StringVar(&seedFile, "file", "", "seed file (.json, .csv, .tsv, .xlsx)")
	catalogSeedCmd.Flags().BoolVar(&seedReplace, "replace", false, "remove existing plants first")
	_ = catalogSeedCmd.MarkFlagRequired("file")

	catalogCmd.AddCommand(catalogMigrateCmd, catalogSeedCmd)
	rootCmd.AddCommand(catalogCmd)
}
