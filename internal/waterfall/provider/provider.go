// Package provider defines the botanical data source adapters used by the
// identification waterfall and plant search.
package provider

import (
	"context"
	"sort"
	"sync"

	"github.com/sells-group/plantcare/internal/model"
	"github.com/sells-group/plantcare/internal/resilience"
)

// Descriptor is the static configuration of a provider.
type Descriptor struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	// Enabled is true iff usable credentials are configured.
	Enabled bool `json:"enabled"`
}

// Provider is a botanical data source.
type Provider interface {
	// Descriptor returns the provider's name, priority and enabled flag.
	Descriptor() Descriptor
}

// Identifier resolves a single plant name to a care record. A nil record
// never comes with a nil error: "no match" is reported as a KindNoMatch *Error.
type Identifier interface {
	Provider
	Identify(ctx context.Context, query string) (*model.ProviderRecord, error)
}

// Searcher returns lightweight summaries for free-text search.
type Searcher interface {
	Provider
	SearchMany(ctx context.Context, query string, limit int) ([]model.SearchResult, error)
}

// Detailer loads a care record by the provider's own id.
type Detailer interface {
	Provider
	Details(ctx context.Context, externalID string) (*model.ProviderRecord, error)
}

// Status describes a registered provider for operators.
type Status struct {
	Descriptor
	Identify bool   `json:"identify"`
	Search   bool   `json:"search"`
	Details  bool   `json:"details"`
	Circuit  string `json:"circuit"`
}

// Registry holds the configured providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	breakers  *resilience.ServiceBreakers
}

// NewRegistry creates an empty provider registry. breakers may be nil.
func NewRegistry(breakers *resilience.ServiceBreakers) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		breakers:  breakers,
	}
}

// Register adds or replaces a provider.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Descriptor().Name] = p
}

// Get returns a provider by name, or nil if not found.
func (r *Registry) Get(name string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[name]
}

// List returns every provider ordered by ascending priority, then name.
func (r *Registry) List() []Provider {
	r.mu.RLock()
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Descriptor(), out[j].Descriptor()
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.Name < b.Name
	})
	return out
}

// Identifiers returns the enabled identification providers in priority order.
func (r *Registry) Identifiers() []Identifier {
	var out []Identifier
	for _, p := range r.List() {
		if id, ok := p.(Identifier); ok && p.Descriptor().Enabled {
			out = append(out, id)
		}
	}
	return out
}

// Searchers returns the enabled search providers in priority order.
func (r *Registry) Searchers() []Searcher {
	var out []Searcher
	for _, p := range r.List() {
		if s, ok := p.(Searcher); ok && p.Descriptor().Enabled {
			out = append(out, s)
		}
	}
	return out
}

// Detailer returns the enabled provider with the given name when it can
// load details by id.
func (r *Registry) Detailer(name string) (Detailer, bool) {
	p := r.Get(name)
	if p == nil || !p.Descriptor().Enabled {
		return nil, false
	}
	d, ok := p.(Detailer)
	return d, ok
}

// Status reports every registered provider in priority order.
func (r *Registry) Status() []Status {
	var states map[string]resilience.CircuitState
	if r.breakers != nil {
		states = r.breakers.States()
	}

	providers := r.List()
	out := make([]Status, 0, len(providers))
	for _, p := range providers {
		d := p.Descriptor()
		_, identify := p.(Identifier)
		_, search := p.(Searcher)
		_, details := p.(Detailer)
		circuit := resilience.CircuitClosed.String()
		if st, ok := states[d.Name]; ok {
			circuit = st.String()
		}
		out = append(out, Status{
			Descriptor: d,
			Identify:   identify,
			Search:     search,
			Details:    details,
			Circuit:    circuit,
		})
	}
	return out
}
