package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a best-effort JSON side-cache over string keys. The backing
// store is never the source of truth: every operation absorbs backend
// failures, so callers see a miss (or a no-op) instead of an error and fall
// back to the database.
//
// A cached JSON "null" is a hit, not a miss. Get reports true and leaves
// dest set to nil, which is how negative lookups (e.g. "user has no
// coupon") are cached without re-querying the store.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	DeletePattern(ctx context.Context, pattern string)
}

type redisCache struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedisCache wraps a Redis client in the Cache facade.
func NewRedisCache(client *redis.Client, log *zap.Logger) Cache {
	return &redisCache{client: client, log: log}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.log.Warn("cache entry corrupt, treating as miss", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache set marshal failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *redisCache) DeletePattern(ctx context.Context, pattern string) {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("cache pattern scan failed", zap.String("pattern", pattern), zap.Error(err))
		return
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.log.Warn("cache pattern delete failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}
