package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/plantcare/internal/config"
)

var (
	cfg *config.Config

	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "plantcare",
	Short: "Plant identification and care data resolution",
	Long:  "Resolves plant names to structured care guides from the local catalog, Perenual and Trefle, with name correction and a generic fallback.",
	// Usage is for flag mistakes; a failed lookup or seed prints only its error.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadFile(configFile)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		zap.L().Debug("config loaded",
			zap.String("command", cmd.Name()),
			zap.String("catalog_driver", cfg.Catalog.Driver),
			zap.Bool("perenual_key", cfg.Providers.Perenual.HasKey()),
			zap.Bool("trefle_key", cfg.Providers.Trefle.HasKey()),
			zap.Bool("opentree", cfg.Providers.OpenTree.Enabled),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
