// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package database

import (
	"context"
	"fmt"
)

// seedSampleData loads a small catalog with a few readers and ratings so a
// fresh install has something to recommend. Idempotent: an already-seeded
// database is left untouched.
func (db *DB) seedSampleData(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return fmt.Errorf("check seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	books := []Book{
		{BookID: 1, Title: "The Hobbit", Authors: "J.R.R. Tolkien", PublicationYear: 1937},
		{BookID: 2, Title: "A Wizard of Earthsea", Authors: "Ursula K. Le Guin", PublicationYear: 1968},
		{BookID: 3, Title: "Dune", Authors: "Frank Herbert", PublicationYear: 1965},
		{BookID: 4, Title: "The Left Hand of Darkness", Authors: "Ursula K. Le Guin", PublicationYear: 1969},
		{BookID: 5, Title: "Neuromancer", Authors: "William Gibson", PublicationYear: 1984},
		{BookID: 6, Title: "The Dispossessed", Authors: "Ursula K. Le Guin", PublicationYear: 1974},
		{BookID: 7, Title: "Hyperion", Authors: "Dan Simmons", PublicationYear: 1989},
		{BookID: 8, Title: "The Name of the Wind", Authors: "Patrick Rothfuss", PublicationYear: 2007},
	}
	for _, b := range books {
		if err := db.UpsertBook(ctx, b); err != nil {
			return err
		}
	}

	readers := []struct {
		name, userName string
		ratings        map[int]int
		shelf          []int
	}{
		{"Avery", "avery", map[int]int{1: 5, 2: 4, 3: 5, 7: 4}, []int{1, 3}},
		{"Blake", "blake", map[int]int{1: 4, 2: 5, 4: 5, 6: 4}, []int{2, 4}},
		{"Casey", "casey", map[int]int{3: 4, 5: 5, 7: 5, 8: 3}, []int{5, 7}},
		{"Devon", "devon", map[int]int{1: 5, 3: 4, 5: 4, 8: 5}, []int{8}},
	}
	for _, r := range readers {
		userID, err := db.CreateUser(ctx, r.name, r.userName, 0)
		if err != nil {
			return err
		}
		for bookID, value := range r.ratings {
			if err := db.AddRating(ctx, userID, bookID, value); err != nil {
				return err
			}
		}
		for _, bookID := range r.shelf {
			if err := db.AddToShelf(ctx, userID, bookID); err != nil {
				return err
			}
		}
	}

	db.logger.Info().Int("books", len(books)).Int("users", len(readers)).Msg("seeded sample data")
	return nil
}
