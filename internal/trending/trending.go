// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

// Package trending maintains the platform-wide trending books snapshot.
//
// A supervised background service recomputes the snapshot on a fixed
// interval; the API serves the snapshot without touching the store. A
// failed refresh keeps the previous snapshot so readers never see a
// partial result.
package trending

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/shelfmate/shelfmate/internal/config"
	"github.com/shelfmate/shelfmate/internal/database"
	"github.com/shelfmate/shelfmate/internal/metrics"
)

// Source computes the trending ranking. The database package provides the
// production implementation.
type Source interface {
	TrendingBooks(ctx context.Context, window time.Duration, limit int) ([]database.TrendingBook, error)
}

// Service refreshes and serves the trending snapshot. It implements
// suture.Service.
type Service struct {
	source Source
	cfg    config.TrendingConfig
	logger zerolog.Logger

	snapshot atomic.Pointer[snapshotState]
}

type snapshotState struct {
	books       []database.TrendingBook
	refreshedAt time.Time
}

// New creates the trending service. Call Refresh or run Serve under a
// supervisor to populate the snapshot.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(source Source, cfg config.TrendingConfig, logger zerolog.Logger) *Service {
	return &Service{
		source: source,
		cfg:    cfg,
		logger: logger.With().Str("service", "trending").Logger(),
	}
}

// Snapshot returns the current trending books and when they were computed.
// The returned slice is shared and must not be mutated.
func (s *Service) Snapshot() ([]database.TrendingBook, time.Time) {
	state := s.snapshot.Load()
	if state == nil {
		return []database.TrendingBook{}, time.Time{}
	}
	return state.books, state.refreshedAt
}

// Refresh recomputes the snapshot once. On failure the previous snapshot
// is kept.
func (s *Service) Refresh(ctx context.Context) error {
	refreshCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	start := time.Now()
	books, err := s.source.TrendingBooks(refreshCtx, s.cfg.RecentWindow, s.cfg.Limit)
	metrics.RecordTrendingRefresh(time.Since(start), len(books), err)
	if err != nil {
		return err
	}

	s.snapshot.Store(&snapshotState{books: books, refreshedAt: time.Now()})
	s.logger.Debug().
		Int("books", len(books)).
		Dur("duration", time.Since(start)).
		Msg("trending snapshot refreshed")
	return nil
}

// Serve implements the suture.Service interface: an immediate refresh,
// then one per interval until the context is canceled.
func (s *Service) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("refresh_interval", s.cfg.RefreshInterval).
		Dur("recent_window", s.cfg.RecentWindow).
		Int("limit", s.cfg.Limit).
		Msg("trending service starting")

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("initial trending refresh failed (will retry on schedule)")
	}

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("trending service shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("trending refresh failed")
			}
		}
	}
}

// String returns the service name for supervisor logging.
func (s *Service) String() string {
	return "trending-service"
}
