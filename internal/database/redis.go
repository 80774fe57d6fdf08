package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the go-redis client with health checking.
type RedisClient struct {
	*redis.Client
}

// NewRedis connects to the Redis server at url.
// Returns nil if the URL is empty (Redis not configured).
func NewRedis(ctx context.Context, url string) (*RedisClient, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisClient{Client: client}, nil
}

// Health checks if the Redis connection is healthy.
func (c *RedisClient) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
