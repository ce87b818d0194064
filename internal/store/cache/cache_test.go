package cache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilestudio/site/internal/domain"
)

type countingStore struct {
	calls    atomic.Int32
	fail     atomic.Bool
	delay    time.Duration
	products []domain.Product
}

func (s *countingStore) Products(ctx context.Context) ([]domain.Product, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.fail.Load() {
		return nil, errors.New("cms down")
	}
	return s.products, nil
}

func (s *countingStore) Collections(context.Context) ([]domain.Collection, error) {
	return []domain.Collection{{Name: "Slabs", Slug: "slabs", Type: domain.CollectionTypeMainCategory}}, nil
}

func (s *countingStore) Catalogues(context.Context) ([]domain.Catalogue, error) {
	return nil, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestCache(src *countingStore, opts ...Option) (*Cache, *clock) {
	clk := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := New(src, "static", time.Minute, quietLogger(), opts...)
	c.now = clk.now
	return c, clk
}

func sampleProducts() []domain.Product {
	return []domain.Product{{ID: 1, Slug: "calacatta-oro", Name: "Calacatta Oro"}}
}

func TestCache_ServesWithinTTL(t *testing.T) {
	src := &countingStore{products: sampleProducts()}
	c, clk := newTestCache(src)
	ctx := context.Background()

	first, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "static", first.Source)

	clk.advance(59 * time.Second)
	second, err := c.Snapshot(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, src.calls.Load())

	clk.advance(2 * time.Second)
	third, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestCache_CollapsesConcurrentRefreshes(t *testing.T) {
	src := &countingStore{products: sampleProducts(), delay: 20 * time.Millisecond}
	c, _ := newTestCache(src)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			products, err := c.Products(context.Background())
			assert.NoError(t, err)
			assert.Len(t, products, 1)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, src.calls.Load())
}

func TestCache_ServesStaleOnFailure(t *testing.T) {
	src := &countingStore{products: sampleProducts()}
	c, clk := newTestCache(src)
	ctx := context.Background()

	first, err := c.Snapshot(ctx)
	require.NoError(t, err)

	src.fail.Store(true)
	clk.advance(2 * time.Minute)

	stale, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, first, stale)
}

func TestCache_FailureWithoutSnapshot(t *testing.T) {
	src := &countingStore{}
	src.fail.Store(true)
	c, _ := newTestCache(src)

	_, err := c.Snapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cms down")
}

func TestCache_Invalidate(t *testing.T) {
	src := &countingStore{products: sampleProducts()}
	c, _ := newTestCache(src)
	ctx := context.Background()

	_, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx))

	_, err = c.Snapshot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestCache_InvalidateDuringRefreshDiscardsResult(t *testing.T) {
	src := &countingStore{products: sampleProducts()}
	c, _ := newTestCache(src)

	require.NoError(t, c.Invalidate(context.Background()))
	_, err := c.refresh(context.Background(), 0)
	require.NoError(t, err)

	c.mu.RLock()
	defer c.mu.RUnlock()
	assert.Nil(t, c.snap, "a refresh started before invalidation must not be kept")
}

func setupRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client), mr
}

func TestCache_SharedSnapshotAcrossInstances(t *testing.T) {
	shared, mr := setupRedis(t)
	ctx := context.Background()

	srcA := &countingStore{products: sampleProducts()}
	a, _ := newTestCache(srcA, WithShared(shared))
	_, err := a.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(SnapshotKey))
	assert.Equal(t, time.Minute, mr.TTL(SnapshotKey))

	srcB := &countingStore{}
	b, _ := newTestCache(srcB, WithShared(shared))
	products, err := b.Products(ctx)
	require.NoError(t, err)

	assert.Equal(t, "calacatta-oro", products[0].Slug)
	assert.EqualValues(t, 0, srcB.calls.Load(), "second instance reads the shared snapshot")

	require.NoError(t, b.Invalidate(ctx))
	assert.False(t, mr.Exists(SnapshotKey))
}

func TestRedis_LoadMissingAndCorrupt(t *testing.T) {
	shared, mr := setupRedis(t)
	ctx := context.Background()

	snap, ttl, err := shared.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Zero(t, ttl)

	require.NoError(t, mr.Set(SnapshotKey, "{not json"))
	_, _, err = shared.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal snapshot")
}

func TestCache_SharedUnavailableFallsBackToSource(t *testing.T) {
	shared, mr := setupRedis(t)
	mr.Close()

	src := &countingStore{products: sampleProducts()}
	c, _ := newTestCache(src, WithShared(shared))

	products, err := c.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.EqualValues(t, 1, src.calls.Load())
}
