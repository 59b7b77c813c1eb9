// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/shelfmate/shelfmate/internal/metrics"
	"github.com/shelfmate/shelfmate/internal/recommend"
)

const redisCacheType = "redis"

// Redis is a cache backed by a Redis server. Lookup failures other than a
// missing key are treated as misses so a Redis outage degrades to
// uncached operation instead of failing requests.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

var _ recommend.Cache = (*Redis)(nil)

// RedisOptions configures the Redis cache backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedis creates a Redis-backed cache. The connection is established
// lazily; use Ping to verify reachability at startup.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRedis(opts RedisOptions, logger zerolog.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &Redis{
		client: client,
		ttl:    opts.TTL,
		logger: logger.With().Str("component", "cache").Str("backend", redisCacheType).Logger(),
	}
}

// Ping verifies the Redis server is reachable.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns the cached value for key, or false when absent or when
// Redis is unreachable.
func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache lookup failed")
		}
		metrics.RecordCacheAccess(redisCacheType, false)
		return nil, false
	}
	metrics.RecordCacheAccess(redisCacheType, true)
	return data, true
}

// Set stores value under key with the configured TTL. Write failures are
// logged and dropped.
func (c *Redis) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Delete removes key. Missing keys are a no-op.
func (c *Redis) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
	}
}

// Close releases the underlying connection pool.
func (c *Redis) Close() error {
	return c.client.Close()
}
