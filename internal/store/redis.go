package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikhilbhutani/podcastsummarizer/internal/cache"
)

// RedisKeyPrefix namespaces record keys in a shared Redis.
const RedisKeyPrefix = "audiosum:process:"

// Redis keeps records as JSON values; expiry is delegated to Redis key TTLs.
type Redis struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewRedis(c *cache.Cache, ttl time.Duration) *Redis {
	return &Redis{cache: c, ttl: ttl}
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) Put(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	ok, err := r.cache.SetNX(ctx, rec.ProcessID, rec, r.ttl)
	if err != nil {
		return fmt.Errorf("store record %s: %w", rec.ProcessID, err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	if err := r.cache.Get(ctx, id, &rec); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("load record %s: %w", id, err)
	}
	return rec, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.cache.Ping(ctx)
}
