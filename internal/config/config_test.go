// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config does not validate: %v", err)
	}
	if cfg.Server.Port != 8290 {
		t.Errorf("Server.Port = %d, want 8290", cfg.Server.Port)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("Cache.Backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Recommend.Neighbors != 15 {
		t.Errorf("Recommend.Neighbors = %d, want 15", cfg.Recommend.Neighbors)
	}
}

func TestServerAddr(t *testing.T) {
	t.Parallel()

	c := ServerConfig{Host: "127.0.0.1", Port: 9000}
	if got := c.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:9000", got)
	}
}

func TestLoadDefaultsOnly(t *testing.T) {
	// Point CONFIG_PATH at a nonexistent file so host config files on the
	// default search paths cannot leak into the test.
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8290 {
		t.Errorf("Server.Port = %d, want default 8290", cfg.Server.Port)
	}
	if cfg.Trending.Limit != 20 {
		t.Errorf("Trending.Limit = %d, want default 20", cfg.Trending.Limit)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9100
cache:
  backend: redis
  redis:
    addr: redis.internal:6379
recommend:
  neighbors: 25
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Chdir(dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.Redis.Addr != "redis.internal:6379" {
		t.Errorf("Cache = %+v, want redis backend at redis.internal:6379", cfg.Cache)
	}
	if cfg.Recommend.Neighbors != 25 {
		t.Errorf("Recommend.Neighbors = %d, want 25", cfg.Recommend.Neighbors)
	}
	// Untouched sections keep their defaults.
	if cfg.Database.MaxMemory != "1GB" {
		t.Errorf("Database.MaxMemory = %q, want default 1GB", cfg.Database.MaxMemory)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "9200")
	t.Setenv("RECOMMEND_NEIGHBORS", "5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Chdir(dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("Server.Port = %d, want env override 9200", cfg.Server.Port)
	}
	if cfg.Recommend.Neighbors != 5 {
		t.Errorf("Recommend.Neighbors = %d, want 5", cfg.Recommend.Neighbors)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("cache:\n  backend: memcached\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Chdir(dir)

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted an unknown cache backend")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantErr: false},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "unknown cache backend", mutate: func(c *Config) { c.Cache.Backend = "disk" }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) {
			c.Cache.Backend = "redis"
			c.Cache.Redis.Addr = ""
		}, wantErr: true},
		{name: "bad recommend section", mutate: func(c *Config) { c.Recommend.Neighbors = 0 }, wantErr: true},
		{name: "trending zero interval", mutate: func(c *Config) { c.Trending.RefreshInterval = 0 }, wantErr: true},
		{name: "trending disabled skips checks", mutate: func(c *Config) {
			c.Trending.Enabled = false
			c.Trending.RefreshInterval = 0
		}, wantErr: false},
		{name: "rate limit zero rps", mutate: func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, wantErr: true},
		{name: "rate limit disabled skips checks", mutate: func(c *Config) {
			c.RateLimit.Enabled = false
			c.RateLimit.RequestsPerSecond = 0
		}, wantErr: false},
		{name: "zero cache ttl", mutate: func(c *Config) { c.Cache.TTL = 0 }, wantErr: true},
		{name: "zero shutdown timeout", mutate: func(c *Config) { c.Server.ShutdownTimeout = 0 }, wantErr: true},
		{name: "custom valid", mutate: func(c *Config) {
			c.Server.Port = 80
			c.Cache.TTL = time.Second
		}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
