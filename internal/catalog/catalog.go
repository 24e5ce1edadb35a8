// Package catalog is the cached view over the template store. Listings for a
// category are cached for a short window to avoid repeated storage scans
// within one multi-turn exchange; staleness up to the TTL is an accepted
// tradeoff and no explicit invalidation is offered.
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/plumedoc/plume/pkg/domain"
	"github.com/plumedoc/plume/pkg/ports"
)

// DefaultTTL is the wall-clock lifetime of a cached category listing.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	models    []domain.TemplateDescriptor
	expiresAt time.Time
}

// Catalog lists categories and templates via a TemplateStore.
// Safe for concurrent use; concurrent writes to the same key are
// last-writer-wins, which is fine given staleness is already tolerated.
type Catalog struct {
	store      ports.TemplateStore
	normalizer ports.Normalizer
	ttl        time.Duration
	now        func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// Option configures the Catalog.
type Option func(*Catalog)

// WithTTL overrides the cache lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) { c.ttl = ttl }
}

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// New creates a catalog over the given store. The normalizer keys the cache,
// so "Contrats" and "contrats " share one entry.
func New(store ports.TemplateStore, normalizer ports.Normalizer, opts ...Option) *Catalog {
	c := &Catalog{
		store:      store,
		normalizer: normalizer,
		ttl:        DefaultTTL,
		now:        time.Now,
		cache:      make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Categories delegates to the store. An empty result is valid, not a failure.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	return c.store.ListCategories(ctx)
}

// Models returns the template descriptors of a category, serving from cache
// within the TTL. A category the store does not know yields an empty slice:
// absence of templates and absence of the category are not distinguished
// here, the engine treats both as "nothing to offer".
func (c *Catalog) Models(ctx context.Context, category string) ([]domain.TemplateDescriptor, error) {
	key := c.normalizer.Normalize(category)

	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expiresAt) {
		return entry.models, nil
	}

	models, err := c.store.ListModels(ctx, category)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = cacheEntry{models: models, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return models, nil
}
