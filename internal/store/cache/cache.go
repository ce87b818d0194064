// Package cache keeps a catalog snapshot for a fixed time so pages are not
// built from a fresh CMS fetch on every request.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/tilestudio/site/internal/domain"
	"github.com/tilestudio/site/internal/store"
	"github.com/tilestudio/site/pkg/logger"
)

// DefaultTTL is how long a snapshot is served before it is refetched.
const DefaultTTL = 60 * time.Second

// Lookup results recorded by catalog_cache_total.
const (
	ResultHit       = "hit"
	ResultSharedHit = "shared_hit"
	ResultMiss      = "miss"
	ResultStale     = "stale"
)

var cacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_cache_total",
		Help: "Catalog snapshot lookups by result.",
	},
	[]string{"result"},
)

// Shared is a snapshot cache shared between instances of the site.
type Shared interface {
	// Load returns the stored snapshot and its remaining lifetime, or a nil
	// snapshot when there is none.
	Load(ctx context.Context) (*domain.Snapshot, time.Duration, error)
	Save(ctx context.Context, snap *domain.Snapshot, ttl time.Duration) error
	Delete(ctx context.Context) error
}

// Cache serves snapshots of a Store. Concurrent refreshes collapse into a
// single fetch. When a refresh fails the previous snapshot keeps being
// served.
type Cache struct {
	source store.Store
	name   string
	ttl    time.Duration
	shared Shared
	logger *slog.Logger
	now    func() time.Time

	group singleflight.Group

	mu         sync.RWMutex
	snap       *domain.Snapshot
	expires    time.Time
	generation uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithShared adds a cache layer shared between instances.
func WithShared(s Shared) Option {
	return func(c *Cache) { c.shared = s }
}

// New wraps source, named name in the returned snapshots.
func New(source store.Store, name string, ttl time.Duration, l *slog.Logger, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{source: source, name: name, ttl: ttl, logger: l, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current snapshot, refreshing it when it has expired.
// The returned snapshot must not be modified.
func (c *Cache) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.RLock()
	snap, fresh, gen := c.snap, c.now().Before(c.expires), c.generation
	c.mu.RUnlock()

	if snap != nil && fresh {
		cacheTotal.WithLabelValues(ResultHit).Inc()
		return snap, nil
	}

	v, err, _ := c.group.Do("snapshot", func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx), gen)
	})
	if err != nil {
		if snap != nil {
			cacheTotal.WithLabelValues(ResultStale).Inc()
			logger.WithContext(ctx, c.logger).WarnContext(ctx, "catalog refresh failed, serving stale snapshot",
				slog.String("source", c.name),
				slog.String("error", err.Error()),
			)
			return snap, nil
		}
		return nil, err
	}
	return v.(*domain.Snapshot), nil
}

func (c *Cache) refresh(ctx context.Context, gen uint64) (*domain.Snapshot, error) {
	// Another caller may have refreshed since gen was read.
	c.mu.RLock()
	current, fresh := c.snap, c.now().Before(c.expires)
	c.mu.RUnlock()
	if current != nil && fresh {
		return current, nil
	}

	if c.shared != nil {
		snap, remaining, err := c.shared.Load(ctx)
		if err != nil {
			c.logger.WarnContext(ctx, "shared catalog cache unavailable", slog.String("error", err.Error()))
		} else if snap != nil && remaining > 0 {
			cacheTotal.WithLabelValues(ResultSharedHit).Inc()
			c.store(snap, remaining, gen)
			return snap, nil
		}
	}

	start := c.now()
	snap, err := store.FetchSnapshot(ctx, c.source, c.name)
	if err != nil {
		return nil, fmt.Errorf("refresh catalog: %w", err)
	}
	cacheTotal.WithLabelValues(ResultMiss).Inc()

	c.logger.InfoContext(ctx, "catalog refreshed",
		slog.String("source", c.name),
		slog.Int("products", len(snap.Products)),
		slog.Int("collections", len(snap.Collections)),
		slog.Int("catalogues", len(snap.Catalogues)),
		slog.Duration("duration", c.now().Sub(start)),
	)

	if c.store(snap, c.ttl, gen) && c.shared != nil {
		if err := c.shared.Save(ctx, snap, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "failed to save shared catalog snapshot", slog.String("error", err.Error()))
		}
	}
	return snap, nil
}

// store keeps snap unless the cache was invalidated after gen was read.
func (c *Cache) store(snap *domain.Snapshot, ttl time.Duration, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return false
	}
	c.snap = snap
	c.expires = c.now().Add(ttl)
	return true
}

// Invalidate drops the cached snapshot so the next read refetches. A fetch
// already in flight does not repopulate the cache.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.snap = nil
	c.expires = time.Time{}
	c.generation++
	c.mu.Unlock()

	c.group.Forget("snapshot")

	if c.shared != nil {
		if err := c.shared.Delete(ctx); err != nil {
			return fmt.Errorf("invalidate shared catalog cache: %w", err)
		}
	}
	return nil
}

// Products implements store.Store.
func (c *Cache) Products(ctx context.Context) ([]domain.Product, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Products, nil
}

// Collections implements store.Store.
func (c *Cache) Collections(ctx context.Context) ([]domain.Collection, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Collections, nil
}

// Catalogues implements store.Store.
func (c *Cache) Catalogues(ctx context.Context) ([]domain.Catalogue, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Catalogues, nil
}
