// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package recommend

import (
	"context"
	"errors"
	"testing"
)

func TestBuildMatrixNoNeighbors(t *testing.T) {
	t.Parallel()

	target := []Rating{rate(1, 10, 5), rate(1, 11, 3), rate(1, 12, 4)}
	repo := &fakeRepo{ratings: map[int][]Rating{1: target}}

	targetRow, m, err := BuildMatrix(context.Background(), repo, 1, target, nil)
	if err != nil {
		t.Fatalf("BuildMatrix() error = %v", err)
	}

	if m.Rows() != 1 {
		t.Errorf("Rows() = %d, want 1", m.Rows())
	}
	if m.Cols() != 3 {
		t.Errorf("Cols() = %d, want 3", m.Cols())
	}
	if targetRow != 0 {
		t.Errorf("targetRow = %d, want 0", targetRow)
	}

	cols, vals := m.Row(0)
	if len(cols) != 3 || len(vals) != 3 {
		t.Fatalf("Row(0) has %d entries, want 3", len(cols))
	}
}

func TestBuildMatrixWithNeighbors(t *testing.T) {
	t.Parallel()

	target := []Rating{rate(1, 10, 5), rate(1, 11, 3)}
	repo := &fakeRepo{ratings: map[int][]Rating{
		1: target,
		2: {rate(2, 10, 4), rate(2, 12, 2)},
		3: {rate(3, 11, 5)},
	}}
	neighbors := []Neighbor{
		{UserID: 2, SharedCount: 1},
		{UserID: 3, SharedCount: 1},
	}

	targetRow, m, err := BuildMatrix(context.Background(), repo, 1, target, neighbors)
	if err != nil {
		t.Fatalf("BuildMatrix() error = %v", err)
	}

	if m.Rows() != 3 {
		t.Errorf("Rows() = %d, want 3", m.Rows())
	}
	if m.Cols() != 3 {
		t.Errorf("Cols() = %d, want 3", m.Cols())
	}

	if got := m.UserAt(targetRow); got != 1 {
		t.Errorf("UserAt(targetRow) = %d, want 1", got)
	}

	// Index maps must be internally consistent bijections.
	for row := 0; row < m.Rows(); row++ {
		userID := m.UserAt(row)
		back, ok := m.UserRow(userID)
		if !ok || back != row {
			t.Errorf("UserRow(UserAt(%d)) = %d,%v, want %d,true", row, back, ok, row)
		}
	}
}

func TestBuildMatrixEmptyFetch(t *testing.T) {
	t.Parallel()

	// A neighbor list that exists but whose ratings vanished before the
	// fetch indicates an inconsistent store.
	repo := &fakeRepo{ratings: map[int][]Rating{}}
	neighbors := []Neighbor{{UserID: 2, SharedCount: 1}}

	_, _, err := BuildMatrix(context.Background(), repo, 1, []Rating{rate(1, 10, 5)}, neighbors)
	if !errors.Is(err, ErrEmptyRatingSet) {
		t.Fatalf("error = %v, want ErrEmptyRatingSet", err)
	}
}

func TestBuildMatrixTargetMissingFromFetch(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{ratings: map[int][]Rating{
		2: {rate(2, 10, 4)},
	}}
	neighbors := []Neighbor{{UserID: 2, SharedCount: 1}}

	_, _, err := BuildMatrix(context.Background(), repo, 1, []Rating{rate(1, 10, 5)}, neighbors)
	if !errors.Is(err, ErrEmptyRatingSet) {
		t.Fatalf("error = %v, want ErrEmptyRatingSet", err)
	}
}

func TestBuildMatrixRepositoryFailure(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("broken pipe")
	repo := &fakeRepo{
		ratings: map[int][]Rating{},
		failOp:  "RatingsForUsers",
		failErr: storeErr,
	}
	neighbors := []Neighbor{{UserID: 2, SharedCount: 1}}

	_, _, err := BuildMatrix(context.Background(), repo, 1, []Rating{rate(1, 10, 5)}, neighbors)
	if !IsRepositoryUnavailable(err) {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestNewMatrixDuplicateCoordinateLastWins(t *testing.T) {
	t.Parallel()

	// The store guarantees (user, book) uniqueness; if that invariant is
	// ever violated, assembly must still be deterministic.
	m := newMatrix([]Rating{
		rate(1, 10, 2),
		rate(1, 11, 3),
		rate(1, 10, 5),
	})

	if m.Rows() != 1 || m.Cols() != 2 {
		t.Fatalf("shape = %dx%d, want 1x2", m.Rows(), m.Cols())
	}

	cols, vals := m.Row(0)
	for i, col := range cols {
		if m.BookAt(col) == 10 && vals[i] != 5 {
			t.Errorf("duplicate cell value = %v, want 5 (last write)", vals[i])
		}
	}
}

func TestNewMatrixFirstSeenIndexOrder(t *testing.T) {
	t.Parallel()

	m := newMatrix([]Rating{
		rate(5, 30, 1),
		rate(2, 20, 2),
		rate(5, 20, 3),
	})

	if got := m.UserAt(0); got != 5 {
		t.Errorf("UserAt(0) = %d, want 5 (first seen)", got)
	}
	if got := m.UserAt(1); got != 2 {
		t.Errorf("UserAt(1) = %d, want 2", got)
	}
	if got := m.BookAt(0); got != 30 {
		t.Errorf("BookAt(0) = %d, want 30 (first seen)", got)
	}
}
