// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package recommend

import (
	"fmt"
	"time"
)

// Config contains tunables for the recommendation pipeline.
type Config struct {
	// MinOverlapRatio is the minimum fraction of the target user's rated
	// books a candidate neighbor must share to qualify.
	// Range: (0, 1]. Default: 0.20.
	MinOverlapRatio float64 `koanf:"min_overlap_ratio"`

	// Neighbors is the number of most-similar users (K) whose ratings
	// feed the scorer. Default: 15.
	Neighbors int `koanf:"neighbors"`

	// MinNeighborRatings is the evidence floor: a book must have strictly
	// more than this many neighbor ratings to be recommended. Default: 2.
	MinNeighborRatings int `koanf:"min_neighbor_ratings"`

	// MinNeighborMean is the quality floor: a book's neighbor mean rating
	// must be strictly greater than this (1-5 scale). Default: 2.
	MinNeighborMean float64 `koanf:"min_neighbor_mean"`

	// CacheEnabled turns response caching on. Default: true.
	CacheEnabled bool `koanf:"cache_enabled"`

	// CacheTTL is how long cached recommendation lists stay valid.
	// Default: 5m.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// DefaultConfig returns the default pipeline configuration. The evidence
// and quality floors are empirically-chosen noise cutoffs, not derived
// constants.
func DefaultConfig() Config {
	return Config{
		MinOverlapRatio:    0.20,
		Neighbors:          15,
		MinNeighborRatings: 2,
		MinNeighborMean:    2.0,
		CacheEnabled:       true,
		CacheTTL:           5 * time.Minute,
	}
}

// Validate checks the configuration for values the pipeline cannot run
// with.
func (c Config) Validate() error {
	if c.MinOverlapRatio <= 0 || c.MinOverlapRatio > 1 {
		return fmt.Errorf("min_overlap_ratio must be in (0, 1], got %v", c.MinOverlapRatio)
	}
	if c.Neighbors <= 0 {
		return fmt.Errorf("neighbors must be positive, got %d", c.Neighbors)
	}
	if c.MinNeighborRatings < 0 {
		return fmt.Errorf("min_neighbor_ratings must not be negative, got %d", c.MinNeighborRatings)
	}
	if c.MinNeighborMean < 0 {
		return fmt.Errorf("min_neighbor_mean must not be negative, got %v", c.MinNeighborMean)
	}
	if c.CacheEnabled && c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive when caching is enabled, got %v", c.CacheTTL)
	}
	return nil
}
