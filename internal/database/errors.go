// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package database

import (
	"errors"
	"io"
	"time"

	"github.com/shelfmate/shelfmate/internal/metrics"
)

// ErrNotFound reports that a requested row does not exist.
var ErrNotFound = errors.New("not found")

// closeQuietly closes a resource and explicitly ignores any error. Used in
// error paths where Close errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// recordQuery feeds a query's duration and outcome into the metrics
// package. Not-found is a normal outcome, not a query error.
func recordQuery(op string, duration time.Duration, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.RecordDBQuery(op, duration, err)
}
