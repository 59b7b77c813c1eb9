// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package recommend

import (
	"errors"
	"fmt"
)

// ErrNoRatings indicates the target user has not rated anything. It is
// recoverable: callers should render an empty recommendation list, not a
// failure.
var ErrNoRatings = errors.New("target user has no ratings")

// ErrEmptyRatingSet indicates the matrix build found zero rating rows after
// a non-empty overlap selection. It should not occur with a consistent
// store and is surfaced to the caller as a failure so the inconsistency is
// noticed, though user-facing surfaces still degrade to an empty list.
var ErrEmptyRatingSet = errors.New("rating set is empty after fetch")

// RepositoryError wraps a failure from the underlying rating store. It is
// propagated unchanged through the pipeline and never retried here; retry
// policy belongs to the caller. Callers use IsRepositoryUnavailable to
// distinguish "the store is down" from "nothing to recommend".
type RepositoryError struct {
	// Op names the repository operation that failed.
	Op string

	// Err is the underlying store error.
	Err error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying store error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// IsRepositoryUnavailable reports whether err (or anything it wraps) is a
// repository failure.
func IsRepositoryUnavailable(err error) bool {
	var re *RepositoryError
	return errors.As(err, &re)
}
