package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tilestudio/site/internal/domain"
)

// SnapshotKey is the Redis key holding the shared snapshot.
const SnapshotKey = "site:catalog:snapshot"

// Redis stores the snapshot as JSON under SnapshotKey with the cache TTL.
type Redis struct {
	client redis.UniversalClient
	key    string
}

// NewRedis creates a shared cache on client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client, key: SnapshotKey}
}

// Load implements Shared.
func (r *Redis) Load(ctx context.Context) (*domain.Snapshot, time.Duration, error) {
	var (
		get *redis.StringCmd
		ttl *redis.DurationCmd
	)
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		get = p.Get(ctx, r.key)
		ttl = p.PTTL(ctx, r.key)
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("redis load snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(get.Val()), &snap); err != nil {
		return nil, 0, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, ttl.Val(), nil
}

// Save implements Shared.
func (r *Redis) Save(ctx context.Context, snap *domain.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis save snapshot: %w", err)
	}
	return nil
}

// Delete implements Shared.
func (r *Redis) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis delete snapshot: %w", err)
	}
	return nil
}
