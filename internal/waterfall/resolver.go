// Package waterfall resolves a free-text plant name to a CareRecord: local
// catalog, name normalization, two ordered provider passes, then the
// generic care template.
package waterfall

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/plantcare/internal/model"
	"github.com/sells-group/plantcare/internal/waterfall/provider"
)

// Catalog is the local exact-name lookup. A nil plant with a nil error is a miss.
type Catalog interface {
	FindExact(ctx context.Context, name string) (*model.CatalogPlant, error)
}

// Normalizer maps a raw name to a canonical query name.
type Normalizer interface {
	Normalize(input string) string
}

// Cache memoizes provider results. A cached nil record is a no-match.
type Cache interface {
	Get(provider, name string) (*model.ProviderRecord, bool)
	Put(provider, name string, record *model.ProviderRecord)
}

// Resolver runs the identification pipeline. It is safe for concurrent use
// when its collaborators are.
type Resolver struct {
	catalog    Catalog
	normalizer Normalizer
	providers  []provider.Identifier
	cache      Cache
	secondPass bool
	nowFunc    func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache memoizes provider lookups in c.
func WithCache(c Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithConfig applies waterfall YAML settings.
func WithConfig(cfg *Config) Option {
	return func(r *Resolver) { r.secondPass = cfg.SecondPassEnabled() }
}

// WithNow injects a clock for elapsed-time reporting.
func WithNow(now func() time.Time) Option {
	return func(r *Resolver) { r.nowFunc = now }
}

// NewResolver builds a resolver over the enabled identifiers, ordered by
// ascending priority. catalog and normalizer may be nil.
func NewResolver(catalog Catalog, normalizer Normalizer, identifiers []provider.Identifier, opts ...Option) *Resolver {
	enabled := make([]provider.Identifier, 0, len(identifiers))
	for _, id := range identifiers {
		if id.Descriptor().Enabled {
			enabled = append(enabled, id)
		}
	}
	slices.SortStableFunc(enabled, func(a, b provider.Identifier) int {
		return cmp.Compare(a.Descriptor().Priority, b.Descriptor().Priority)
	})

	r := &Resolver{
		catalog:    catalog,
		normalizer: normalizer,
		providers:  enabled,
		secondPass: true,
		nowFunc:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Providers returns the identification order.
func (r *Resolver) Providers() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Descriptor().Name
	}
	return names
}

// Resolve always returns a record with every care category present.
func (r *Resolver) Resolve(ctx context.Context, rawName string) *model.CareRecord {
	return r.ResolveTrace(ctx, rawName).Record
}

// ResolveTrace resolves rawName and reports every provider attempt.
func (r *Resolver) ResolveTrace(ctx context.Context, rawName string) *Resolution {
	start := r.nowFunc()
	res := &Resolution{Input: rawName}
	defer func() {
		res.Elapsed = r.nowFunc().Sub(start)
		zap.L().Info("waterfall: plant resolved",
			zap.String("input", rawName),
			zap.String("source", res.Record.Provenance.CareSource()),
			zap.String("common_name", res.Record.CommonName),
			zap.Bool("corrected", res.Record.Provenance.Correction != nil),
			zap.Int("provider_calls", res.ProviderCalls()),
			zap.Duration("elapsed", res.Elapsed),
		)
	}()

	trimmed := strings.TrimSpace(rawName)
	if trimmed == "" {
		res.Record = genericRecord(trimmed)
		return res
	}

	if plant := r.lookupLocal(ctx, trimmed); plant != nil {
		res.Record = plant.CareRecord()
		return res
	}

	folded := model.Fold(trimmed)
	corrected := folded
	if r.normalizer != nil {
		if n := r.normalizer.Normalize(trimmed); n != "" {
			corrected = n
		}
	}
	changed := corrected != folded

	if rec := r.runPass(ctx, PassCorrected, corrected, res); rec != nil {
		var correction *model.NameCorrection
		if changed {
			correction = &model.NameCorrection{Original: trimmed, Corrected: corrected}
		}
		res.Record = providerRecord(rec, correction)
		return res
	}

	if changed && r.secondPass {
		if rec := r.runPass(ctx, PassRaw, trimmed, res); rec != nil {
			res.Record = providerRecord(rec, nil)
			return res
		}
	}

	res.Record = genericRecord(trimmed)
	return res
}

func (r *Resolver) lookupLocal(ctx context.Context, name string) *model.CatalogPlant {
	if r.catalog == nil {
		return nil
	}
	plant, err := r.catalog.FindExact(ctx, name)
	if err != nil {
		zap.L().Warn("waterfall: local catalog lookup failed",
			zap.String("name", name),
			zap.Error(err),
		)
		return nil
	}
	return plant
}

// runPass walks the providers in order and returns the first hit.
func (r *Resolver) runPass(ctx context.Context, pass Pass, query string, res *Resolution) *model.ProviderRecord {
	for _, p := range r.providers {
		rec, attempt := r.lookup(ctx, p, query)
		attempt.Pass = pass
		res.Attempts = append(res.Attempts, attempt)
		if rec != nil {
			return rec
		}
	}
	return nil
}

// lookup consults the cache, then the provider. No-match results are cached
// so a repeat lookup costs no network call; failures are not.
func (r *Resolver) lookup(ctx context.Context, p provider.Identifier, query string) (*model.ProviderRecord, Attempt) {
	name := p.Descriptor().Name
	attempt := Attempt{Provider: name, Query: query}

	if r.cache != nil {
		if rec, ok := r.cache.Get(name, query); ok {
			zap.L().Debug("waterfall: cache hit",
				zap.String("provider", name),
				zap.String("query", query),
				zap.Bool("no_match", rec == nil),
			)
			attempt.Cached = true
			attempt.Outcome = OutcomeNoMatch
			if rec != nil {
				attempt.Outcome = OutcomeHit
			}
			return rec, attempt
		}
	}

	rec, err := p.Identify(ctx, query)
	if err == nil && rec == nil {
		err = provider.NoMatch(name)
	}
	if err != nil {
		switch provider.KindOf(err) {
		case provider.KindNoMatch:
			attempt.Outcome = OutcomeNoMatch
			zap.L().Debug("waterfall: provider returned no match",
				zap.String("provider", name),
				zap.String("query", query),
			)
			if r.cache != nil {
				r.cache.Put(name, query, nil)
			}
		case provider.KindRateLimited:
			attempt.Outcome = OutcomeRateLimited
			zap.L().Warn("provider rate limited",
				zap.String("provider", name),
				zap.String("query", query),
				zap.Error(err),
			)
		default:
			attempt.Outcome = OutcomeUnavailable
			zap.L().Warn("waterfall: provider unavailable",
				zap.String("provider", name),
				zap.String("query", query),
				zap.Error(err),
			)
		}
		return nil, attempt
	}

	if r.cache != nil {
		r.cache.Put(name, query, rec)
	}
	attempt.Outcome = OutcomeHit
	return rec, attempt
}

func providerRecord(rec *model.ProviderRecord, correction *model.NameCorrection) *model.CareRecord {
	return &model.CareRecord{
		CommonName:     rec.CommonName,
		ScientificName: rec.ScientificName,
		Family:         rec.Family,
		Description:    rec.Description,
		Care:           rec.Care.Clone(),
		Provenance: model.Provenance{
			SourceKind: model.SourceProvider,
			Provider:   rec.Provider,
			Correction: correction,
		},
	}
}

func genericRecord(rawName string) *model.CareRecord {
	return &model.CareRecord{
		CommonName:  rawName,
		Description: "Custom plant: " + rawName,
		Care:        model.GenericCare(),
		Provenance:  model.Provenance{SourceKind: model.SourceGenericTemplate},
	}
}
