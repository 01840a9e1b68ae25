package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the local catalog, then the providers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return writeJSON(cmd.OutOrStdout(), env.Service.SearchPlants(ctx, strings.Join(args, " ")))
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <partial name>",
	Short: "Autocomplete a plant name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		return writeJSON(cmd.OutOrStdout(), env.Service.GetPlantSuggestions(args[0]))
	},
}

var careCmd = &cobra.Command{
	Use:   "care",
	Short: "Print the generic care template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		return writeJSON(cmd.OutOrStdout(), env.Service.GetGenericCare())
	},
}

var detailsCmd = &cobra.Command{
	Use:   "details <id>",
	Short: "Load a plant by search result id (local_, perenual_, trefle_)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return writeJSON(cmd.OutOrStdout(), env.Service.PlantDetails(ctx, args[0]))
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show provider configuration and circuit state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		count, err := env.Catalog.Count(cmd.Context())
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"catalog": map[string]any{
				"driver": cfg.Catalog.Driver,
				"plants": count,
			},
			"identifiers": env.Resolver.Providers(),
			"providers":   env.Service.ProviderStatus(),
			"cache":       env.Cache.Stats(),
		})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd, suggestCmd, careCmd, detailsCmd, statusCmd)
}
