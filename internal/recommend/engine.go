// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package recommend

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/shelfmate/shelfmate/internal/metrics"
)

// Engine runs the four-stage recommendation pipeline against a Repository.
// It holds only immutable configuration and an optional response cache, so
// a single Engine serves concurrent requests without locking.
type Engine struct {
	repo   Repository
	config Config
	logger zerolog.Logger
	cache  Cache

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	errorCount   atomic.Int64
}

// Stats is a snapshot of the engine's request counters.
type Stats struct {
	RequestCount int64 `json:"request_count"`
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	ErrorCount   int64 `json:"error_count"`
}

// NewEngine creates an engine for the given repository.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(repo Repository, cfg Config, logger zerolog.Logger) (*Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		repo:   repo,
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// SetCache attaches a response cache. Must be called before the engine
// starts serving requests.
func (e *Engine) SetCache(c Cache) {
	e.cache = c
}

// Recommend computes the ranked recommendation list for one user.
//
// Error contract:
//   - ErrNoRatings: the user has rated nothing; recoverable, callers
//     should present an empty list.
//   - ErrEmptyRatingSet: store inconsistency detected during the matrix
//     build; callers should log it and degrade to an empty list.
//   - *RepositoryError: the store failed; must be surfaced so callers can
//     distinguish "nothing to recommend" from "the store is down".
func (e *Engine) Recommend(ctx context.Context, userID int) ([]Recommendation, error) {
	start := time.Now()
	e.requestCount.Add(1)

	logger := e.logger.With().Int("user_id", userID).Logger()

	if recs, ok := e.cachedResponse(ctx, userID); ok {
		e.cacheHits.Add(1)
		logger.Debug().Msg("cache hit")
		return recs, nil
	}
	e.cacheMisses.Add(1)

	targetRatings, err := e.repo.RatingsForUser(ctx, userID)
	if err != nil {
		e.errorCount.Add(1)
		return nil, &RepositoryError{Op: "ratings for user", Err: err}
	}
	if len(targetRatings) == 0 {
		logger.Debug().Msg("user has no ratings")
		return nil, ErrNoRatings
	}

	neighbors, err := FindNeighbors(ctx, e.repo, userID, targetRatings, e.config.MinOverlapRatio)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("find neighbors: %w", err)
	}

	targetRow, matrix, err := BuildMatrix(ctx, e.repo, userID, targetRatings, neighbors)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("build matrix: %w", err)
	}

	neighborRows := RankNeighbors(matrix, targetRow, e.config.Neighbors)
	metrics.RecommendationNeighbors.Observe(float64(len(neighborRows)))

	recs, err := ScoreAndRank(ctx, e.repo, matrix, neighborRows, userID, targetRatings, e.config)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("score and rank: %w", err)
	}
	if recs == nil {
		recs = []Recommendation{}
	}

	e.cacheResponse(ctx, userID, recs)

	logger.Debug().
		Int("rated", len(targetRatings)).
		Int("candidates", len(neighbors)).
		Int("neighbors", len(neighborRows)).
		Int("recommended", len(recs)).
		Dur("latency", time.Since(start)).
		Msg("recommendation complete")

	return recs, nil
}

// GetStats returns a snapshot of the engine counters.
func (e *Engine) GetStats() Stats {
	return Stats{
		RequestCount: e.requestCount.Load(),
		CacheHits:    e.cacheHits.Load(),
		CacheMisses:  e.cacheMisses.Load(),
		ErrorCount:   e.errorCount.Load(),
	}
}

func (e *Engine) cacheKey(userID int) string {
	return fmt.Sprintf("recommend:user:%d", userID)
}

func (e *Engine) cachedResponse(ctx context.Context, userID int) ([]Recommendation, bool) {
	if !e.config.CacheEnabled || e.cache == nil {
		return nil, false
	}

	data, ok := e.cache.Get(ctx, e.cacheKey(userID))
	if !ok {
		return nil, false
	}

	var recs []Recommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		e.logger.Warn().Err(err).Int("user_id", userID).Msg("discarding undecodable cache entry")
		return nil, false
	}
	return recs, true
}

func (e *Engine) cacheResponse(ctx context.Context, userID int, recs []Recommendation) {
	if !e.config.CacheEnabled || e.cache == nil {
		return
	}

	data, err := json.Marshal(recs)
	if err != nil {
		e.logger.Warn().Err(err).Int("user_id", userID).Msg("failed to encode response for caching")
		return
	}
	e.cache.Set(ctx, e.cacheKey(userID), data)
}
