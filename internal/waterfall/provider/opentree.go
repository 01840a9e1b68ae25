package provider

import (
	"context"
	"strconv"

	"github.com/sells-group/plantcare/internal/model"
	"github.com/sells-group/plantcare/pkg/opentree"
)

// OpenTree is a search-only taxonomy source. It has no care data and takes
// no part in identification.
type OpenTree struct {
	base
	client opentree.Client
}

// NewOpenTree wraps an Open Tree of Life client.
func NewOpenTree(client opentree.Client, s Settings) *OpenTree {
	if s.Descriptor.Name == "" {
		s.Descriptor.Name = "opentree"
	}
	return &OpenTree{base: newBase(s), client: client}
}

// SearchMany returns up to limit taxon summaries.
func (o *OpenTree) SearchMany(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	return call(ctx, o.base, func(ctx context.Context) ([]model.SearchResult, error) {
		ctx, cancel := o.withTimeout(ctx)
		defer cancel()
		taxa, err := o.client.Autocomplete(ctx, query)
		if err != nil {
			return nil, err
		}
		if limit > 0 && len(taxa) > limit {
			taxa = taxa[:limit]
		}

		out := make([]model.SearchResult, 0, len(taxa))
		for _, t := range taxa {
			out = append(out, model.SearchResult{
				ID:            "opentree_" + strconv.Itoa(t.OTTID),
				Name:          t.UniqueName,
				BotanicalName: t.UniqueName,
				Type:          "Plant",
				Image:         DefaultImage,
				Watering:      "Research specific needs",
				Sunlight:      "Varies by species",
				About:         t.UniqueName + " from Open Tree of Life taxonomy database",
				Description:   "Taxonomic information available via Open Tree of Life",
				Source:        "Open Tree of Life",
			})
		}
		return out, nil
	})
}
