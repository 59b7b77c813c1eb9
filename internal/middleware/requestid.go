// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

// Package middleware provides the HTTP middleware stack: request IDs,
// Prometheus instrumentation, and per-client rate limiting.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shelfmate/shelfmate/internal/logging"
)

// RequestID assigns every request a unique ID, honoring an upstream
// X-Request-ID header when present. The ID is echoed in the response and
// attached to the request context for structured logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
