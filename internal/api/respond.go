// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/shelfmate/shelfmate/internal/logging"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already out, nothing more we can do for the client.
		logging.Warn().Err(err).Msg("failed to encode response body")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	respondJSON(w, status, errorResponse{
		Error:     msg,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}

// urlParamInt parses a positive integer route parameter.
func urlParamInt(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// decodeBody decodes a JSON request body into dst, rejecting unknown
// fields so client typos surface as 400s instead of silent defaults.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
