package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis initializes a Redis client from a redis:// URL.
//
// A nil client is returned only for a malformed URL, which is a
// configuration error. A failed ping is returned alongside a usable
// client: the cache layer degrades to miss when Redis is unreachable, so
// the application can choose to start anyway.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return client, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
