// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shelfmate/shelfmate/internal/middleware"
)

// NewRouter assembles the full route tree. limiter may be nil when rate
// limiting is disabled.
func (s *Server) NewRouter(limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	// Health probes and the scrape endpoint stay outside the rate limit
	// so orchestrators and Prometheus are never throttled out.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", s.handleLiveness)
		r.Get("/ready", s.handleReadiness)
		r.Get("/", s.handleLiveness)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/recommendations/{userID}", s.handleRecommendations)
			r.Get("/trending", s.handleTrending)
			r.Get("/books/{bookID}", s.handleGetBook)

			r.Route("/users", func(r chi.Router) {
				r.Post("/", s.handleCreateUser)
				r.Get("/{userID}", s.handleGetUser)
				r.Post("/{userID}/ratings", s.handleAddRating)
				r.Route("/{userID}/shelf", func(r chi.Router) {
					r.Get("/", s.handleGetShelf)
					r.Post("/", s.handleAddToShelf)
					r.Delete("/{bookID}", s.handleRemoveFromShelf)
				})
			})
		})
	})

	return r
}
