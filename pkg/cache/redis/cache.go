// Package redis is the read-model cache shared by the services. Keys are
// structured as <entity>:<id>, e.g. meal:7 or recipe:12.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// Key builds the structured key for one entity.
func Key(entity string, id any) string {
	return fmt.Sprintf("%s:%v", entity, id)
}

// Keys builds one structured key per id.
func Keys[ID any](entity string, ids []ID) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = Key(entity, id)
	}
	return keys
}

// Invalidator drops cached entries after the store changed underneath them.
type Invalidator interface {
	Delete(ctx context.Context, keys ...string) error
}

// Cache is a JSON value cache.
type Cache interface {
	Invalidator
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// client is the subset of *goredis.Client the cache uses.
type client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Ping(ctx context.Context) *goredis.StatusCmd
}

type redisCache struct {
	client     client
	prefix     string
	defaultTTL time.Duration
	log        *zap.Logger
}

// New wraps an existing go-redis client.
func New(c client, conf Config, log *zap.Logger) Cache {
	return &redisCache{client: c, prefix: conf.KeyPrefix, defaultTTL: conf.DefaultTTL, log: log}
}

func (c *redisCache) key(k string) string {
	return c.prefix + k
}

func (c *redisCache) Get(ctx context.Context, key string, dst any) error {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return nil
}

// Set stores value as JSON. A zero ttl uses the configured default.
func (c *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys. Missing keys are not an error, so it is safe to repeat.
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	removed, err := c.client.Del(ctx, prefixed...).Result()
	if err != nil {
		return fmt.Errorf("failed to delete %d cache keys: %w", len(keys), err)
	}
	c.log.Debug("cache invalidated", zap.Int("keys", len(keys)), zap.Int64("removed", removed))
	return nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
