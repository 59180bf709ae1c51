//go:build integration

package containers

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisContainer is a Redis server backing the revocation list and rate limiter.
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
	Client    *redis.Client
}

func startRedis(ctx context.Context) (*RedisContainer, error) {
	c, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	url, err := c.ConnectionString(ctx)
	if err != nil {
		return nil, abandon(ctx, c, fmt.Errorf("redis url: %w", err))
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, abandon(ctx, c, fmt.Errorf("redis url %q: %w", url, err))
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, abandon(ctx, c, fmt.Errorf("redis ping: %w", err))
	}
	return &RedisContainer{Container: c, URL: url, Client: client}, nil
}

// FlushAll drops every key so tests start from an empty keyspace.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
