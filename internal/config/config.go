// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

// Package config loads and validates the Shelfmate service configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then environment variables. Environment variables win.
package config

import (
	"fmt"
	"time"

	"github.com/shelfmate/shelfmate/internal/recommend"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Database  DatabaseConfig   `koanf:"database"`
	Cache     CacheConfig      `koanf:"cache"`
	Recommend recommend.Config `koanf:"recommend"`
	Trending  TrendingConfig   `koanf:"trending"`
	RateLimit RateLimitConfig  `koanf:"rate_limit"`
	Logging   LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port string for net.Listen.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds the DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Empty selects an in-memory
	// database, which is useful for tests.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB's memory use, e.g. "2GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads limits DuckDB worker threads. 0 lets DuckDB decide.
	Threads int `koanf:"threads"`

	// SeedSampleData loads a small sample catalog on startup.
	SeedSampleData bool `koanf:"seed_sample_data"`
}

// CacheConfig selects and tunes the response cache backend.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend string `koanf:"backend"`

	// TTL applies to all cached entries.
	TTL time.Duration `koanf:"ttl"`

	// MaxEntries bounds the in-memory backend. 0 means unbounded.
	MaxEntries int `koanf:"max_entries"`

	Redis RedisConfig `koanf:"redis"`
}

// RedisConfig holds connection settings for the redis cache backend.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// TrendingConfig tunes the background trending refresher.
type TrendingConfig struct {
	Enabled         bool          `koanf:"enabled"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// RecentWindow is how far back a rating counts as recent activity.
	RecentWindow time.Duration `koanf:"recent_window"`

	// Limit is the number of books kept in the trending snapshot.
	Limit int `koanf:"limit"`
}

// RateLimitConfig tunes the per-client HTTP rate limiter.
type RateLimitConfig struct {
	Enabled           bool    `koanf:"enabled"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// LoggingConfig holds the logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults. These are applied first and
// overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8290,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:           "/data/shelfmate.duckdb",
			MaxMemory:      "1GB",
			Threads:        0,
			SeedSampleData: false,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr: "127.0.0.1:6379",
				DB:   0,
			},
		},
		Recommend: recommend.DefaultConfig(),
		Trending: TrendingConfig{
			Enabled:         true,
			RefreshInterval: 15 * time.Minute,
			RecentWindow:    30 * 24 * time.Hour,
			Limit:           20,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			Burst:             20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for values the service cannot start
// with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout)
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for the redis backend")
	}

	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	if c.Trending.Enabled {
		if c.Trending.RefreshInterval <= 0 {
			return fmt.Errorf("trending.refresh_interval must be positive, got %v", c.Trending.RefreshInterval)
		}
		if c.Trending.RecentWindow <= 0 {
			return fmt.Errorf("trending.recent_window must be positive, got %v", c.Trending.RecentWindow)
		}
		if c.Trending.Limit <= 0 {
			return fmt.Errorf("trending.limit must be positive, got %d", c.Trending.Limit)
		}
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limit.requests_per_second must be positive, got %v", c.RateLimit.RequestsPerSecond)
		}
		if c.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate_limit.burst must be positive, got %d", c.RateLimit.Burst)
		}
	}

	return nil
}
