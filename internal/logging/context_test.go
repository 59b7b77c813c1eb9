// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGenerateRequestID(t *testing.T) {
	t.Parallel()

	a := GenerateRequestID()
	b := GenerateRequestID()
	if a == "" || b == "" {
		t.Fatal("generated empty request ID")
	}
	if a == b {
		t.Errorf("consecutive request IDs collide: %q", a)
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := ContextWithRequestID(context.Background(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext = %q, want req-123", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("empty context returned %q, want empty string", got)
	}
}

func TestLoggerFromContextFallsBack(t *testing.T) {
	t.Parallel()

	// No logger stored: the global logger is returned and must be usable.
	logger := LoggerFromContext(context.Background())
	logger.Debug().Msg("fallback works")
}

func TestCtxAddsRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	ctx = ContextWithRequestID(ctx, "req-abc")

	Ctx(ctx).Info().Msg("handled")

	if !strings.Contains(buf.String(), `"request_id":"req-abc"`) {
		t.Errorf("request_id missing from output: %q", buf.String())
	}
}

func TestCtxWithoutRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))

	Ctx(ctx).Info().Msg("handled")

	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("unexpected request_id field: %q", buf.String())
	}
}
