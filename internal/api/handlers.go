// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shelfmate/shelfmate/internal/database"
	"github.com/shelfmate/shelfmate/internal/logging"
	"github.com/shelfmate/shelfmate/internal/metrics"
	"github.com/shelfmate/shelfmate/internal/recommend"
)

// recommendationsResponse is the body of GET /api/v1/recommendations/{userID}.
type recommendationsResponse struct {
	UserID          int                        `json:"user_id"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Count           int                        `json:"count"`
}

// handleRecommendations maps the engine's error contract onto HTTP:
// a user with no ratings gets an empty list, a store inconsistency
// gets an empty list plus an error log, and a store outage gets 503.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlParamInt(r, "userID")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "user ID must be a positive integer")
		return
	}

	start := time.Now()
	recs, err := s.recommender.Recommend(r.Context(), userID)

	switch {
	case err == nil:
		metrics.RecordRecommendation("ok", time.Since(start))
		metrics.RecommendationResults.Observe(float64(len(recs)))
	case errors.Is(err, recommend.ErrNoRatings):
		metrics.RecordRecommendation("no_ratings", time.Since(start))
		recs = []recommend.Recommendation{}
	case errors.Is(err, recommend.ErrEmptyRatingSet):
		metrics.RecordRecommendation("empty", time.Since(start))
		logging.Ctx(r.Context()).Error().Err(err).Int("user_id", userID).
			Msg("rating set empty after fetch, serving empty list")
		recs = []recommend.Recommendation{}
	case recommend.IsRepositoryUnavailable(err):
		metrics.RecordRecommendation("error", time.Since(start))
		logging.Ctx(r.Context()).Error().Err(err).Int("user_id", userID).
			Msg("recommendation store unavailable")
		respondError(w, r, http.StatusServiceUnavailable, "recommendation store unavailable")
		return
	default:
		metrics.RecordRecommendation("error", time.Since(start))
		logging.Ctx(r.Context()).Error().Err(err).Int("user_id", userID).
			Msg("recommendation failed")
		respondError(w, r, http.StatusInternalServerError, "recommendation failed")
		return
	}

	respondJSON(w, http.StatusOK, recommendationsResponse{
		UserID:          userID,
		Recommendations: recs,
		Count:           len(recs),
	})
}

// trendingResponse is the body of GET /api/v1/trending.
type trendingResponse struct {
	Books       []database.TrendingBook `json:"books"`
	Count       int                     `json:"count"`
	RefreshedAt *time.Time              `json:"refreshed_at,omitempty"`
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	resp := trendingResponse{Books: []database.TrendingBook{}}
	if s.trending != nil {
		books, refreshedAt := s.trending.Snapshot()
		resp.Books = books
		resp.Count = len(books)
		if !refreshedAt.IsZero() {
			resp.RefreshedAt = &refreshedAt
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := urlParamInt(r, "bookID")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "book ID must be a positive integer")
		return
	}

	book, err := s.store.GetBook(r.Context(), bookID)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "book not found")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int("book_id", bookID).Msg("book lookup failed")
		respondError(w, r, http.StatusInternalServerError, "book lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, book)
}

// createUserRequest is the body of POST /api/v1/users.
type createUserRequest struct {
	Name      string `json:"name"`
	UserName  string `json:"user_name"`
	BirthYear int    `json:"birth_year,omitempty"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.UserName = strings.TrimSpace(req.UserName)
	if req.Name == "" || req.UserName == "" {
		respondError(w, r, http.StatusBadRequest, "name and user_name are required")
		return
	}

	userID, err := s.store.CreateUser(r.Context(), req.Name, req.UserName, req.BirthYear)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("user_name", req.UserName).
			Msg("user creation failed")
		respondError(w, r, http.StatusInternalServerError, "user creation failed")
		return
	}

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int("user_id", userID).
			Msg("created user not readable")
		respondError(w, r, http.StatusInternalServerError, "user creation failed")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlParamInt(r, "userID")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "user ID must be a positive integer")
		return
	}

	user, err := s.store.GetUser(r.Context(), userID)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int("user_id", userID).Msg("user lookup failed")
		respondError(w, r, http.StatusInternalServerError, "user lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// addRatingRequest is the body of POST /api/v1/users/{userID}/ratings.
// Re-rating an already-rated book replaces the earlier rating.
type addRatingRequest struct {
	BookID int `json:"book_id"`
	Rating int `json:"rating"`
}

func (s *Server) handleAddRating(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlParamInt(r, "userID")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "user ID must be a positive integer")
		return
	}

	var req addRatingRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BookID <= 0 {
		respondError(w, r, http.StatusBadRequest, "book_id must be a positive integer")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, r, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	if _, err := s.store.GetUser(r.Context(), userID); errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "user not found")
		return
	}
	if _, err := s.store.GetBook(r.Context(), req.BookID); errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "book not found")
		return
	}

	if err := s.store.AddRating(r.Context(), userID, req.BookID, req.Rating); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Int("user_id", userID).Int("book_id", req.BookID).Msg("rating write failed")
		respondError(w, r, http.StatusInternalServerError, "rating write failed")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"user_id": userID,
		"book_id": req.BookID,
		"rating":  req.Rating,
	})
}

// addShelfRequest is the body of POST /api/v1/users/{userID}/shelf.
type addShelfRequest struct {
	BookID int `json:"book_id"`
}

func (s *Server) handleAddToShelf(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlParamInt(r, "userID")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "user ID must be a positive integer")
		return
	}

	var req addShelfRequest
	if err := decodeBody(r, &req); err != nil || req.BookID <= 0 {
		respondError(w, r, http.StatusBadRequest, "book_id must be a positive integer")
		return
	}

	if _, err := s.store.GetBook(r.Context(), req.BookID); errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "book not found")
		return
	}

	if err := s.store.AddToShelf(r.Context(), userID, req.BookID); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Int("user_id", userID).Int("book_id", req.BookID).Msg("shelf write failed")
		respondError(w, r, http.StatusInternalServerError, "shelf write failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFromShelf(w http.ResponseWriter, r *http.Request) {
	userID, okUser := urlParamInt(r, "userID")
	bookID, okBook := urlParamInt(r, "bookID")
	if !okUser || !okBook {
		respondError(w, r, http.StatusBadRequest, "user and book IDs must be positive integers")
		return
	}

	if err := s.store.RemoveFromShelf(r.Context(), userID, bookID); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Int("user_id", userID).Int("book_id", bookID).Msg("shelf delete failed")
		respondError(w, r, http.StatusInternalServerError, "shelf delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// shelfResponse is the body of GET /api/v1/users/{userID}/shelf.
type shelfResponse struct {
	UserID int             `json:"user_id"`
	Books  []database.Book `json:"books"`
	Count  int             `json:"count"`
}

func (s *Server) handleGetShelf(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlParamInt(r, "userID")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "user ID must be a positive integer")
		return
	}

	books, err := s.store.ShelfForUser(r.Context(), userID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int("user_id", userID).Msg("shelf lookup failed")
		respondError(w, r, http.StatusInternalServerError, "shelf lookup failed")
		return
	}
	if books == nil {
		books = []database.Book{}
	}
	respondJSON(w, http.StatusOK, shelfResponse{UserID: userID, Books: books, Count: len(books)})
}

// handleLiveness answers as soon as the process can serve requests.
func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleReadiness additionally requires the store to answer a ping.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("readiness probe failed")
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "store unreachable",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
