// Package search answers free-text plant queries from the local catalog,
// falling back to a sequential fan-out across provider search endpoints.
package search

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/plantcare/internal/model"
	"github.com/sells-group/plantcare/internal/waterfall/provider"
)

const (
	// DefaultLocalLimit caps local catalog results.
	DefaultLocalLimit = 10
	// DefaultProviderLimit caps results taken from each provider.
	DefaultProviderLimit = 5

	// LocalSource tags results from the local catalog.
	LocalSource = "Local Database"
)

// Local is the catalog's substring search.
type Local interface {
	Search(ctx context.Context, query string, limit int) ([]model.CatalogPlant, error)
}

// Aggregator merges search results. Local hits are authoritative: providers
// are only consulted when the catalog has nothing.
type Aggregator struct {
	local         Local
	providers     []provider.Searcher
	localLimit    int
	providerLimit int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLocalLimit overrides the local result cap.
func WithLocalLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.localLimit = n
		}
	}
}

// WithProviderLimit overrides the per-provider result cap.
func WithProviderLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.providerLimit = n
		}
	}
}

// NewAggregator builds an aggregator over the enabled searchers in priority
// order. local may be nil.
func NewAggregator(local Local, searchers []provider.Searcher, opts ...Option) *Aggregator {
	enabled := make([]provider.Searcher, 0, len(searchers))
	for _, s := range searchers {
		if s.Descriptor().Enabled {
			enabled = append(enabled, s)
		}
	}
	slices.SortStableFunc(enabled, func(x, y provider.Searcher) int {
		return cmp.Compare(x.Descriptor().Priority, y.Descriptor().Priority)
	})

	a := &Aggregator{
		local:         local,
		providers:     enabled,
		localLimit:    DefaultLocalLimit,
		providerLimit: DefaultProviderLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Search returns ranked summaries for query. A blank query returns an empty
// list without touching any source. The result is never nil.
func (a *Aggregator) Search(ctx context.Context, query string) []model.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.SearchResult{}
	}

	if local := a.searchLocal(ctx, query); len(local) > 0 {
		return local
	}

	var merged []model.SearchResult
	for _, p := range a.providers {
		name := p.Descriptor().Name
		results, err := p.SearchMany(ctx, query, a.providerLimit)
		if err != nil {
			if provider.KindOf(err) == provider.KindRateLimited {
				zap.L().Warn("provider rate limited",
					zap.String("provider", name),
					zap.String("query", query),
				)
			} else {
				zap.L().Warn("search: provider failed",
					zap.String("provider", name),
					zap.String("query", query),
					zap.Error(err),
				)
			}
			continue
		}
		if len(results) > a.providerLimit {
			results = results[:a.providerLimit]
		}
		zap.L().Debug("search: provider results",
			zap.String("provider", name),
			zap.Int("count", len(results)),
		)
		merged = append(merged, results...)
	}

	return Rank(query, Dedupe(merged))
}

func (a *Aggregator) searchLocal(ctx context.Context, query string) []model.SearchResult {
	if a.local == nil {
		return nil
	}
	plants, err := a.local.Search(ctx, query, a.localLimit)
	if err != nil {
		zap.L().Warn("search: local catalog failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	if len(plants) > a.localLimit {
		plants = plants[:a.localLimit]
	}

	out := make([]model.SearchResult, 0, len(plants))
	for _, p := range plants {
		out = append(out, LocalSummary(p))
	}
	return out
}

// LocalSummary converts a catalog plant into a search row.
func LocalSummary(p model.CatalogPlant) model.SearchResult {
	name := cmp.Or(p.Name, p.CommonName, "Unknown")
	about := cmp.Or(p.Description, "Plant information available")
	return model.SearchResult{
		ID:            "local_" + p.ID,
		Name:          name,
		BotanicalName: cmp.Or(p.BotanicalName, "Unknown"),
		Type:          cmp.Or(p.Type, "Plant"),
		Image:         cmp.Or(p.ImageURL, provider.PlaceholderImage(name)),
		Watering:      cmp.Or(p.Care.First(model.CareWatering), "Regular watering"),
		Sunlight:      cmp.Or(p.Care.First(model.CareSunlight), "Bright indirect light"),
		About:         about,
		Description:   about,
		Source:        LocalSource,
	}
}

// Dedupe drops rows whose (name, botanical name) pair, compared without
// case, has already been seen. The first occurrence wins.
func Dedupe(results []model.SearchResult) []model.SearchResult {
	type key struct{ name, botanical string }
	seen := make(map[key]bool, len(results))
	out := make([]model.SearchResult, 0, len(results))
	for _, r := range results {
		k := key{model.Fold(r.Name), model.Fold(r.BotanicalName)}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// Rank orders results by how closely the name matches query: exact names
// first, then prefix matches, then the rest. Ties keep their input order,
// which is provider priority.
func Rank(query string, results []model.SearchResult) []model.SearchResult {
	q := model.Fold(query)
	slices.SortStableFunc(results, func(x, y model.SearchResult) int {
		return cmp.Compare(matchTier(q, x), matchTier(q, y))
	})
	return results
}

func matchTier(q string, r model.SearchResult) int {
	name := model.Fold(r.Name)
	botanical := model.Fold(r.BotanicalName)
	switch {
	case name == q || botanical == q:
		return 0
	case strings.HasPrefix(name, q) || strings.HasPrefix(botanical, q):
		return 1
	default:
		return 2
	}
}
