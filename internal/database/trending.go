// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package database

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// TrendingBook is one row of the trending computation: a shelved book with
// its recent activity and its weighted score.
type TrendingBook struct {
	BookID            int     `json:"book_id"`
	Title             string  `json:"title"`
	RecentRatingCount int     `json:"recent_rating_count"`
	RatingCount       int     `json:"rating_count"`
	AverageRating     float64 `json:"average_rating"`
	Score             float64 `json:"score"`
}

// Trending score weights. Recent activity dominates, with total volume and
// quality as secondary signals.
const (
	trendingRecentWeight  = 0.5
	trendingCountWeight   = 0.3
	trendingAverageWeight = 0.2
)

// TrendingBooks returns the highest-scoring books among those currently on
// at least one reading shelf. Ratings newer than the window count as recent
// activity.
func (db *DB) TrendingBooks(ctx context.Context, window time.Duration, limit int) ([]TrendingBook, error) {
	if limit <= 0 {
		return []TrendingBook{}, nil
	}
	cutoff := time.Now().Add(-window)

	var books []TrendingBook
	err := db.timed("trending_books", func() error {
		rows, err := db.conn.QueryContext(ctx, `
			SELECT b.book_id, b.title, b.rating_count, b.average_rating,
				COALESCE(r.recent_count, 0) AS recent_count
			FROM books b
			JOIN (SELECT DISTINCT book_id FROM listed_books) l ON l.book_id = b.book_id
			LEFT JOIN (
				SELECT book_id, COUNT(*) AS recent_count
				FROM user_book_ratings
				WHERE rated_date >= ?
				GROUP BY book_id
			) r ON r.book_id = b.book_id`, cutoff)
		if err != nil {
			return fmt.Errorf("query trending books: %w", err)
		}
		defer closeQuietly(rows)

		for rows.Next() {
			var t TrendingBook
			if err := rows.Scan(&t.BookID, &t.Title, &t.RatingCount, &t.AverageRating,
				&t.RecentRatingCount); err != nil {
				return fmt.Errorf("scan trending row: %w", err)
			}
			t.Score = trendingRecentWeight*float64(t.RecentRatingCount) +
				trendingCountWeight*float64(t.RatingCount) +
				trendingAverageWeight*t.AverageRating
			books = append(books, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(books, func(i, j int) bool {
		if books[i].Score != books[j].Score {
			return books[i].Score > books[j].Score
		}
		return books[i].BookID < books[j].BookID
	})
	if len(books) > limit {
		books = books[:limit]
	}
	if books == nil {
		books = []TrendingBook{}
	}
	return books, nil
}
