// Package respcache memoizes provider identification results per
// (provider, normalized name) for a fixed validity window.
package respcache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/plantcare/internal/model"
)

const (
	// DefaultTTL is the validity window of a cached provider response.
	DefaultTTL = 24 * time.Hour
	// DefaultSweepInterval is the cadence of the background expiry sweep.
	DefaultSweepInterval = time.Hour
)

// Key identifies a cached provider response.
type Key struct {
	Provider string
	Name     string
}

type entry struct {
	record    *model.ProviderRecord
	createdAt time.Time
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Swept   uint64 `json:"swept"`
}

// Cache is a process-wide TTL map. Entries are never mutated; a Put for an
// existing key replaces it (last write wins). There is no LRU bound: growth
// is limited only by SweepExpired.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]entry
	ttl     time.Duration
	nowFunc func() time.Time

	hits   atomic.Uint64
	misses atomic.Uint64
	swept  atomic.Uint64

	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the validity window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithNow injects a clock.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) {
		c.nowFunc = now
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[Key]entry),
		ttl:     DefaultTTL,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewKey builds a key with the name trimmed and lowercased.
func NewKey(provider, name string) Key {
	return Key{Provider: provider, Name: model.Fold(name)}
}

// Get returns the cached record for (provider, name). ok is false on a miss
// or when the entry is past its window. A cached negative result is
// reported as (nil, true).
func (c *Cache) Get(provider, name string) (*model.ProviderRecord, bool) {
	key := NewKey(provider, name)

	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found || c.expired(e) {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return e.record, true
}

// Put stores record for (provider, name). A nil record caches a no-match.
func (c *Cache) Put(provider, name string, record *model.ProviderRecord) {
	key := NewKey(provider, name)
	c.mu.Lock()
	c.entries[key] = entry{record: record, createdAt: c.nowFunc()}
	c.mu.Unlock()
}

// SweepExpired removes entries past the validity window and returns how many
// were removed.
func (c *Cache) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, key)
			removed++
		}
	}
	c.swept.Add(uint64(removed))
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns usage counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries: c.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Swept:   c.swept.Load(),
	}
}

// StartSweeper runs SweepExpired every interval until ctx is done or Close
// is called. Calling it more than once has no effect.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	c.mu.Lock()
	if c.done != nil {
		c.mu.Unlock()
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.SweepExpired(); n > 0 {
					zap.L().Info("response cache sweep", zap.Int("removed", n), zap.Int("remaining", c.Len()))
				}
			}
		}
	}()
}

// Close stops the background sweeper and waits for it to exit.
func (c *Cache) Close() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// expired reports whether e is at or beyond the validity window.
func (c *Cache) expired(e entry) bool {
	return c.nowFunc().Sub(e.createdAt) >= c.ttl
}
