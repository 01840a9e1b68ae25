// Package plantcare is the boundary the rest of the application calls:
// identify a plant, search, autocomplete, fetch details and report provider
// health.
package plantcare

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/plantcare/internal/model"
	"github.com/sells-group/plantcare/internal/waterfall"
	"github.com/sells-group/plantcare/internal/waterfall/provider"
)

// ErrInvalidInput rejects a blank plant name before the pipeline runs.
var ErrInvalidInput = eris.New("plantcare: plant name is required")

// DefaultMaxConcurrent bounds IdentifyMany when no limit is configured.
const DefaultMaxConcurrent = 5

// Resolver runs the identification waterfall.
type Resolver interface {
	ResolveTrace(ctx context.Context, rawName string) *waterfall.Resolution
}

// Searcher answers free-text search.
type Searcher interface {
	Search(ctx context.Context, query string) []model.SearchResult
}

// Suggester completes partial names.
type Suggester interface {
	Suggest(partial string) []string
}

// Catalog loads local plants by id.
type Catalog interface {
	Get(ctx context.Context, id string) (*model.CatalogPlant, error)
}

// Providers exposes provider detail lookups and status.
type Providers interface {
	Detailer(name string) (provider.Detailer, bool)
	Status() []provider.Status
}

// Deps are the collaborators of a Service. Resolver is required; the rest
// degrade to empty answers when nil.
type Deps struct {
	Resolver      Resolver
	Searcher      Searcher
	Suggester     Suggester
	Catalog       Catalog
	Providers     Providers
	MaxConcurrent int
}

// Service implements the plant care operations.
type Service struct {
	deps Deps
}

// New creates a Service.
func New(deps Deps) *Service {
	if deps.MaxConcurrent <= 0 {
		deps.MaxConcurrent = DefaultMaxConcurrent
	}
	return &Service{deps: deps}
}

// IdentifyPlant resolves rawName to a care record. It fails only on blank
// input; otherwise the worst case is the generic template.
func (s *Service) IdentifyPlant(ctx context.Context, rawName string) (*model.CareRecord, error) {
	res, err := s.IdentifyTrace(ctx, rawName)
	if err != nil {
		return nil, err
	}
	return res.Record, nil
}

// IdentifyTrace is IdentifyPlant with the provider attempts attached.
func (s *Service) IdentifyTrace(ctx context.Context, rawName string) (*waterfall.Resolution, error) {
	if strings.TrimSpace(rawName) == "" {
		return nil, ErrInvalidInput
	}
	return s.deps.Resolver.ResolveTrace(ctx, rawName), nil
}

// BatchResult is one entry of IdentifyMany, in input order.
type BatchResult struct {
	Input  string            `json:"input"`
	Record *model.CareRecord `json:"record,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// IdentifyMany resolves names with at most MaxConcurrent in flight. A blank
// name fails only its own entry. Names not started before ctx is done are
// reported with the context error.
func (s *Service) IdentifyMany(ctx context.Context, names []string) []BatchResult {
	results := make([]BatchResult, len(names))
	if len(names) == 0 {
		return results
	}

	zap.L().Info("plantcare: identifying batch",
		zap.Int("names", len(names)),
		zap.Int("concurrency", s.deps.MaxConcurrent),
	)

	var g errgroup.Group
	g.SetLimit(s.deps.MaxConcurrent)

	var failed atomic.Int64
	for i, name := range names {
		g.Go(func() error {
			results[i].Input = name
			if err := ctx.Err(); err != nil {
				failed.Add(1)
				results[i].Error = err.Error()
				return nil
			}
			rec, err := s.IdentifyPlant(ctx, name)
			if err != nil {
				failed.Add(1)
				results[i].Error = err.Error()
				return nil
			}
			results[i].Record = rec
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("plantcare: batch complete",
		zap.Int("names", len(names)),
		zap.Int64("failed", failed.Load()),
	)
	return results
}

// SearchPlants returns ranked summaries. A blank query returns an empty list
// without consulting any source.
func (s *Service) SearchPlants(ctx context.Context, query string) []model.SearchResult {
	if s.deps.Searcher == nil || strings.TrimSpace(query) == "" {
		return []model.SearchResult{}
	}
	return s.deps.Searcher.Search(ctx, query)
}

// GetGenericCare returns a fresh copy of the fallback care template.
func (s *Service) GetGenericCare() model.CareGuide {
	return model.GenericCare()
}

// GetPlantSuggestions returns canonical names for autocomplete.
func (s *Service) GetPlantSuggestions(partial string) []string {
	if s.deps.Suggester == nil {
		return []string{}
	}
	return s.deps.Suggester.Suggest(partial)
}

// ProviderStatus lists every registered provider.
func (s *Service) ProviderStatus() []provider.Status {
	if s.deps.Providers == nil {
		return []provider.Status{}
	}
	return s.deps.Providers.Status()
}
