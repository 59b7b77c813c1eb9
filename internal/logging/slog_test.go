// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestSlogLoggerWritesThroughZerolog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slogger := NewSlogLogger(zerolog.New(&buf))

	slogger.Info("service started", "service", "http", "attempt", int64(2))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["message"] != "service started" {
		t.Errorf("message = %v, want service started", entry["message"])
	}
	if entry["service"] != "http" {
		t.Errorf("service = %v, want http", entry["service"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
}

func TestSlogLoggerLevelMapping(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slogger := NewSlogLogger(zerolog.New(&buf))

	slogger.Error("backoff", "err", "restart loop")
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Errorf("error level not mapped: %q", buf.String())
	}

	buf.Reset()
	slogger.Warn("slow")
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("warn level not mapped: %q", buf.String())
	}
}

func TestSlogLoggerRespectsZerologLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slogger := NewSlogLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	slogger.Debug("suppressed")
	slogger.Info("suppressed")

	if buf.Len() != 0 {
		t.Errorf("events below warn were emitted: %q", buf.String())
	}
}

func TestSlogLoggerGroupsAndAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slogger := NewSlogLogger(zerolog.New(&buf)).With("supervisor", "root").WithGroup("svc")

	slogger.Info("restarting", "name", "trending")

	out := buf.String()
	if !strings.Contains(out, `"supervisor":"root"`) {
		t.Errorf("pre-set attr missing: %q", out)
	}
	if !strings.Contains(out, `"svc.name":"trending"`) {
		t.Errorf("grouped attr missing: %q", out)
	}
}
