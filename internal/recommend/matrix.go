// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package recommend

import (
	"context"
	"sort"
)

// Matrix is a sparse user-by-book rating matrix in compressed sparse row
// form. Rows are users and columns are books, both addressed by dense
// 0-based indices assigned in first-seen order from the working rating set.
//
// A Matrix is built fresh for every recommendation request and must not be
// reused across requests: dense indices are only meaningful for the rating
// set they were assigned from.
type Matrix struct {
	rowPtr []int
	colInd []int
	vals   []float64

	// userIndex and bookIndex map persistent IDs to dense indices;
	// users and books are the reverse mappings.
	userIndex map[int]int
	bookIndex map[int]int
	users     []int
	books     []int
}

// BuildMatrix fetches the working rating set for the target user and the
// given neighbors and assembles the sparse matrix. It returns the dense row
// index assigned to the target user along with the matrix.
//
// With no neighbors the working set is exactly targetRatings: a one-row
// matrix is valid input for the later stages, not an error. ErrEmptyRatingSet
// is returned if the fetch yields no rows at all, which indicates an
// inconsistent store rather than an empty-but-valid state.
func BuildMatrix(ctx context.Context, repo Repository, targetUserID int, targetRatings []Rating, neighbors []Neighbor) (int, *Matrix, error) {
	var working []Rating
	if len(neighbors) == 0 {
		working = targetRatings
	} else {
		userIDs := make([]int, 0, len(neighbors)+1)
		for _, n := range neighbors {
			userIDs = append(userIDs, n.UserID)
		}
		userIDs = append(userIDs, targetUserID)

		fetched, err := repo.RatingsForUsers(ctx, userIDs)
		if err != nil {
			return 0, nil, &RepositoryError{Op: "ratings for users", Err: err}
		}
		working = fetched
	}

	if len(working) == 0 {
		return 0, nil, ErrEmptyRatingSet
	}

	m := newMatrix(working)

	targetRow, ok := m.userIndex[targetUserID]
	if !ok {
		// The target's own ratings were expected in the working set.
		return 0, nil, ErrEmptyRatingSet
	}
	return targetRow, m, nil
}

// newMatrix assigns dense indices in first-seen order and converts the
// coordinate triples to CSR form with columns sorted within each row.
func newMatrix(ratings []Rating) *Matrix {
	m := &Matrix{
		userIndex: make(map[int]int),
		bookIndex: make(map[int]int),
	}

	type coord struct {
		row, col int
	}
	// The repository guarantees (user, book) uniqueness; if a duplicate
	// coordinate slips through anyway, the last value wins so assembly
	// stays deterministic.
	cells := make(map[coord]float64, len(ratings))
	order := make([]coord, 0, len(ratings))

	for _, r := range ratings {
		row, ok := m.userIndex[r.UserID]
		if !ok {
			row = len(m.users)
			m.userIndex[r.UserID] = row
			m.users = append(m.users, r.UserID)
		}
		col, ok := m.bookIndex[r.BookID]
		if !ok {
			col = len(m.books)
			m.bookIndex[r.BookID] = col
			m.books = append(m.books, r.BookID)
		}

		c := coord{row: row, col: col}
		if _, seen := cells[c]; !seen {
			order = append(order, c)
		}
		cells[c] = float64(r.Value)
	}

	perRow := make([][]coord, len(m.users))
	for _, c := range order {
		perRow[c.row] = append(perRow[c.row], c)
	}

	m.rowPtr = make([]int, len(m.users)+1)
	m.colInd = make([]int, 0, len(order))
	m.vals = make([]float64, 0, len(order))

	for row, cs := range perRow {
		sort.Slice(cs, func(i, j int) bool { return cs[i].col < cs[j].col })
		for _, c := range cs {
			m.colInd = append(m.colInd, c.col)
			m.vals = append(m.vals, cells[c])
		}
		m.rowPtr[row+1] = len(m.colInd)
	}

	return m
}

// Rows returns the number of user rows.
func (m *Matrix) Rows() int {
	return len(m.users)
}

// Cols returns the number of book columns.
func (m *Matrix) Cols() int {
	return len(m.books)
}

// Row returns the column indices and values of row i. The slices alias the
// matrix storage and must not be modified.
func (m *Matrix) Row(i int) (cols []int, vals []float64) {
	start, end := m.rowPtr[i], m.rowPtr[i+1]
	return m.colInd[start:end], m.vals[start:end]
}

// UserAt returns the persistent user ID for a dense row index.
func (m *Matrix) UserAt(row int) int {
	return m.users[row]
}

// BookAt returns the persistent book ID for a dense column index.
func (m *Matrix) BookAt(col int) int {
	return m.books[col]
}

// UserRow returns the dense row index for a persistent user ID.
func (m *Matrix) UserRow(userID int) (int, bool) {
	row, ok := m.userIndex[userID]
	return row, ok
}
