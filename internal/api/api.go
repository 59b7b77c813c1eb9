// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

// Package api exposes the HTTP surface: recommendation and trending
// reads, rating and shelf writes, catalog lookups, health probes, and
// the Prometheus scrape endpoint.
package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/shelfmate/shelfmate/internal/database"
	"github.com/shelfmate/shelfmate/internal/recommend"
)

// Recommender computes the ranked recommendation list for one user.
// *recommend.Engine is the production implementation.
type Recommender interface {
	Recommend(ctx context.Context, userID int) ([]recommend.Recommendation, error)
}

// Store is the subset of database operations the handlers need.
// *database.DB is the production implementation.
type Store interface {
	GetBook(ctx context.Context, bookID int) (database.Book, error)
	CreateUser(ctx context.Context, name, userName string, birthYear int) (int, error)
	GetUser(ctx context.Context, userID int) (database.User, error)
	AddRating(ctx context.Context, userID, bookID, value int) error
	AddToShelf(ctx context.Context, userID, bookID int) error
	RemoveFromShelf(ctx context.Context, userID, bookID int) error
	ShelfForUser(ctx context.Context, userID int) ([]database.Book, error)
	Ping(ctx context.Context) error
}

// TrendingProvider serves the most recent trending snapshot without
// touching the store.
type TrendingProvider interface {
	Snapshot() ([]database.TrendingBook, time.Time)
}

// Server holds the handler dependencies.
type Server struct {
	recommender Recommender
	store       Store
	trending    TrendingProvider
	logger      zerolog.Logger
}

// NewServer wires the handlers. trending may be nil when the trending
// service is disabled; the endpoint then returns an empty snapshot.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewServer(recommender Recommender, store Store, trending TrendingProvider, logger zerolog.Logger) *Server {
	return &Server{
		recommender: recommender,
		store:       store,
		trending:    trending,
		logger:      logger.With().Str("component", "api").Logger(),
	}
}
