package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pixelbridge-systems/pixelbridge/internal/metrics"
	"github.com/pixelbridge-systems/pixelbridge/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how long a cached client may serve reads
// before falling through to the backing store.
const DefaultCacheTTL = 600 * time.Second

// CachedRepository is a read-through lookaside cache over another
// Repository. Get serves from Redis when a fresh entry exists; Merge
// writes through to the inner store and invalidates the cached entry
// before returning, so a subsequent Get never observes the pre-merge
// value after the merge has been acknowledged.
type CachedRepository struct {
	inner Repository
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedRepository(inner Repository, redisClient *redis.Client, ttl time.Duration) *CachedRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedRepository{
		inner: inner,
		redis: redisClient,
		ttl:   ttl,
	}
}

func (r *CachedRepository) Get(ctx context.Context, id string) (*models.Client, error) {
	key := cacheKey(id)

	data, err := r.redis.Get(ctx, key).Result()
	if err == nil {
		var client models.Client
		if err := json.Unmarshal([]byte(data), &client); err == nil {
			metrics.CacheHitsTotal.Inc()
			return &client, nil
		}
		// Corrupt entry; drop it and fall through.
		r.redis.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down must not take reads with it.
		metrics.StoreErrorsTotal.WithLabelValues("cache_get").Inc()
	}
	metrics.CacheMissesTotal.Inc()

	client, err := r.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(client); err == nil {
		if err := r.redis.Set(ctx, key, data, r.ttl).Err(); err != nil {
			metrics.StoreErrorsTotal.WithLabelValues("cache_set").Inc()
		}
	}

	return client, nil
}

func (r *CachedRepository) Merge(ctx context.Context, id string, update models.ClientUpdate) error {
	if err := r.inner.Merge(ctx, id, update); err != nil {
		return err
	}

	// Invalidation is part of the merge: a merge whose invalidation
	// failed would let readers see the stale entry for up to the TTL.
	if err := r.redis.Del(ctx, cacheKey(id)).Err(); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("cache_del").Inc()
		return fmt.Errorf("failed to invalidate cached client: %w", err)
	}

	return nil
}

func (r *CachedRepository) List(ctx context.Context) ([]*models.Client, error) {
	return r.inner.List(ctx)
}

func (r *CachedRepository) Close() error {
	if err := r.redis.Close(); err != nil {
		return err
	}
	return r.inner.Close()
}

func cacheKey(id string) string {
	return "pixelbridge:client:" + id
}
