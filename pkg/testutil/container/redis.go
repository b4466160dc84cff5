package container

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const redisImage = "redis:7-alpine"

// Redis starts a Redis server and returns a connected client.
func Redis(t testing.TB) *goredis.Client {
	t.Helper()
	c := start(t, func(ctx context.Context) (*tcredis.RedisContainer, error) {
		return tcredis.Run(ctx, redisImage)
	})

	uri, err := c.ConnectionString(context.Background())
	if err != nil {
		t.Fatalf("redis connection string: %v", err)
	}
	opts, err := goredis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse redis url %s: %v", uri, err)
	}
	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	waitPing(t, "redis", func(ctx context.Context) error { return client.Ping(ctx).Err() })
	return client
}
