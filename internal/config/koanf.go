// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order. The
// first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/shelfmate/config.yaml",
	"/etc/shelfmate/config.yml",
}

// ConfigPathEnvVar overrides the config file search when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from three layers, lowest priority first:
//
//  1. built-in defaults
//  2. optional YAML config file
//  3. environment variables
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps flat environment variable names to config paths.
// Unlisted variables are ignored so unrelated environment noise never
// reaches the configuration.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_sample_data":  "database.seed_sample_data",

	"cache_backend":     "cache.backend",
	"cache_ttl":         "cache.ttl",
	"cache_max_entries": "cache.max_entries",
	"redis_addr":        "cache.redis.addr",
	"redis_password":    "cache.redis.password",
	"redis_db":          "cache.redis.db",

	"recommend_min_overlap_ratio":    "recommend.min_overlap_ratio",
	"recommend_neighbors":            "recommend.neighbors",
	"recommend_min_neighbor_ratings": "recommend.min_neighbor_ratings",
	"recommend_min_neighbor_mean":    "recommend.min_neighbor_mean",
	"recommend_cache_enabled":        "recommend.cache_enabled",
	"recommend_cache_ttl":            "recommend.cache_ttl",

	"trending_enabled":          "trending.enabled",
	"trending_refresh_interval": "trending.refresh_interval",
	"trending_recent_window":    "trending.recent_window",
	"trending_limit":            "trending.limit",

	"rate_limit_enabled": "rate_limit.enabled",
	"rate_limit_rps":     "rate_limit.requests_per_second",
	"rate_limit_burst":   "rate_limit.burst",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its config path,
// or "" to skip it.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
