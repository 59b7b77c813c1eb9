// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shelfmate/shelfmate/internal/recommend"
)

// RatingsForUser returns every rating by the given user, most recent
// first.
func (db *DB) RatingsForUser(ctx context.Context, userID int) ([]recommend.Rating, error) {
	var ratings []recommend.Rating
	err := db.timed("ratings_for_user", func() error {
		rows, err := db.conn.QueryContext(ctx, `
			SELECT user_id, book_id, rating, rated_date
			FROM user_book_ratings
			WHERE user_id = ?
			ORDER BY rated_date DESC, book_id ASC`, userID)
		if err != nil {
			return fmt.Errorf("query ratings for user %d: %w", userID, err)
		}
		defer closeQuietly(rows)

		ratings, err = scanRatings(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

// OverlapCounts returns, for every user other than excludeUserID who has
// rated at least one of bookIDs, how many of those books they have rated.
func (db *DB) OverlapCounts(ctx context.Context, bookIDs []int, excludeUserID int) (map[int]int, error) {
	counts := make(map[int]int)
	if len(bookIDs) == 0 {
		return counts, nil
	}

	placeholders, args := inPlaceholders(bookIDs)
	args = append(args, excludeUserID)

	err := db.timed("overlap_counts", func() error {
		rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`
			SELECT user_id, COUNT(*) AS shared
			FROM user_book_ratings
			WHERE book_id IN (%s) AND user_id != ?
			GROUP BY user_id`, placeholders), args...)
		if err != nil {
			return fmt.Errorf("query overlap counts: %w", err)
		}
		defer closeQuietly(rows)

		for rows.Next() {
			var userID, shared int
			if err := rows.Scan(&userID, &shared); err != nil {
				return fmt.Errorf("scan overlap count: %w", err)
			}
			counts[userID] = shared
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// RatingsForUsers returns all ratings belonging to the given users in a
// single fetch.
func (db *DB) RatingsForUsers(ctx context.Context, userIDs []int) ([]recommend.Rating, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	placeholders, args := inPlaceholders(userIDs)

	var ratings []recommend.Rating
	err := db.timed("ratings_for_users", func() error {
		rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`
			SELECT user_id, book_id, rating, rated_date
			FROM user_book_ratings
			WHERE user_id IN (%s)
			ORDER BY user_id ASC, book_id ASC`, placeholders), args...)
		if err != nil {
			return fmt.Errorf("query ratings for users: %w", err)
		}
		defer closeQuietly(rows)

		ratings, err = scanRatings(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

// BookMetadata returns metadata for the given books. Books without a
// catalog row are absent from the result.
func (db *DB) BookMetadata(ctx context.Context, bookIDs []int) (map[int]recommend.BookMeta, error) {
	meta := make(map[int]recommend.BookMeta)
	if len(bookIDs) == 0 {
		return meta, nil
	}

	placeholders, args := inPlaceholders(bookIDs)

	err := db.timed("book_metadata", func() error {
		rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`
			SELECT book_id, rating_count, mod_title
			FROM books
			WHERE book_id IN (%s)`, placeholders), args...)
		if err != nil {
			return fmt.Errorf("query book metadata: %w", err)
		}
		defer closeQuietly(rows)

		for rows.Next() {
			var m recommend.BookMeta
			if err := rows.Scan(&m.BookID, &m.GlobalRatingCount, &m.NormalizedTitle); err != nil {
				return fmt.Errorf("scan book metadata: %w", err)
			}
			meta[m.BookID] = m
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// AddRating inserts or replaces a user's rating for a book and refreshes
// the book's aggregate rating count and average in the same transaction.
func (db *DB) AddRating(ctx context.Context, userID, bookID, value int) error {
	if value < 1 || value > 5 {
		return fmt.Errorf("rating must be in [1, 5], got %d", value)
	}

	return db.timed("add_rating", func() error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_book_ratings (user_id, book_id, rating, rated_date)
			VALUES (?, ?, ?, current_timestamp)
			ON CONFLICT (user_id, book_id)
			DO UPDATE SET rating = excluded.rating, rated_date = excluded.rated_date`,
			userID, bookID, value); err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}

		// Aggregates are recomputed from the rating rows rather than
		// incremented so re-rating the same book cannot drift them.
		if _, err := tx.ExecContext(ctx, `
			UPDATE books SET
				rating_count = (SELECT COUNT(*) FROM user_book_ratings WHERE book_id = ?),
				average_rating = (SELECT AVG(rating) FROM user_book_ratings WHERE book_id = ?)
			WHERE book_id = ?`, bookID, bookID, bookID); err != nil {
			return fmt.Errorf("refresh book aggregates: %w", err)
		}

		return tx.Commit()
	})
}

func scanRatings(rows *sql.Rows) ([]recommend.Rating, error) {
	var ratings []recommend.Rating
	for rows.Next() {
		var r recommend.Rating
		if err := rows.Scan(&r.UserID, &r.BookID, &r.Value, &r.RatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}
