package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/plantcare/internal/model"
	"github.com/sells-group/plantcare/internal/waterfall"
)

var identifyTrace bool

// identifyOutput adds the display fields a caller persists with the record.
type identifyOutput struct {
	*model.CareRecord
	CareSource string              `json:"care_source"`
	SourceNote string              `json:"source_note"`
	Attempts   []waterfall.Attempt `json:"attempts,omitempty"`
}

var identifyCmd = &cobra.Command{
	Use:   "identify <plant name>",
	Short: "Resolve a plant name to a care guide",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Service.IdentifyTrace(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := identifyOutput{
			CareRecord: res.Record,
			CareSource: res.Record.Provenance.CareSource(),
			SourceNote: res.Record.Provenance.SourceNote(),
		}
		if identifyTrace {
			out.Attempts = res.Attempts
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	identifyCmd.Flags().BoolVar(&identifyTrace, "trace", false, "include every provider attempt")
	rootCmd.AddCommand(identifyCmd)
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
