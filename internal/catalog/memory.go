package catalog

import (
	"context"
	"sync"

	"github.com/sells-group/plantcare/internal/model"
)

// Memory is an in-process catalog. Plants keep their load order, which is
// also the order of Search results.
type Memory struct {
	mu     sync.RWMutex
	plants []model.CatalogPlant
	byID   map[string]int
}

// NewMemory returns an empty in-memory catalog.
func NewMemory(plants ...model.CatalogPlant) *Memory {
	m := &Memory{byID: make(map[string]int)}
	m.load(plants)
	return m
}

func (m *Memory) load(plants []model.CatalogPlant) int64 {
	for _, p := range plants {
		p = *clonePlant(p)
		if p.ID != "" {
			if i, ok := m.byID[p.ID]; ok {
				m.plants[i] = p
				continue
			}
			m.byID[p.ID] = len(m.plants)
		}
		m.plants = append(m.plants, p)
	}
	return int64(len(plants))
}

func (m *Memory) FindExact(_ context.Context, name string) (*model.CatalogPlant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.plants {
		if p.Matches(name) {
			return clonePlant(p), nil
		}
	}
	return nil, nil
}

func (m *Memory) Search(_ context.Context, query string, limit int) ([]model.CatalogPlant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.CatalogPlant
	for _, p := range m.plants {
		if limit > 0 && len(out) == limit {
			break
		}
		if p.Contains(query) {
			out = append(out, *clonePlant(p))
		}
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, id string) (*model.CatalogPlant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePlant(m.plants[i]), nil
}

func (m *Memory) Upsert(_ context.Context, plants []model.CatalogPlant) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(plants), nil
}

func (m *Memory) Replace(_ context.Context, plants []model.CatalogPlant) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plants = nil
	m.byID = make(map[string]int)
	return m.load(plants), nil
}

func (m *Memory) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.plants), nil
}

func (m *Memory) Migrate(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

// clonePlant detaches a result from the stored plant.
func clonePlant(p model.CatalogPlant) *model.CatalogPlant {
	p.Care = p.Care.Clone()
	return &p
}
