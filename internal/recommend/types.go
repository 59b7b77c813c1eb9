// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package recommend

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Rating is a single user-book rating. The (UserID, BookID) pair is unique;
// the repository owns upsert semantics, so a later rating for the same pair
// replaces the earlier one before it ever reaches this package.
type Rating struct {
	// UserID is the rating user.
	UserID int `json:"user_id"`

	// BookID is the rated book.
	BookID int `json:"book_id"`

	// Value is the rating on a 1-5 scale.
	Value int `json:"value"`

	// RatedAt is when the rating was recorded.
	RatedAt time.Time `json:"rated_at"`
}

// BookMeta is the slice of book metadata the engine needs: how popular a
// book is platform-wide and its normalized title for duplicate-edition
// detection.
type BookMeta struct {
	// BookID is the book identifier.
	BookID int `json:"book_id"`

	// GlobalRatingCount is the total number of ratings the book has
	// received across all users.
	GlobalRatingCount int `json:"global_rating_count"`

	// NormalizedTitle is the title with punctuation stripped, whitespace
	// collapsed, and case folded. Two book rows with the same normalized
	// title are treated as editions of the same work.
	NormalizedTitle string `json:"normalized_title"`
}

// Neighbor is a candidate similar-taste user discovered by overlap
// selection. Neighbors are transient: computed per request and re-ranked by
// cosine similarity before they influence scoring.
type Neighbor struct {
	// UserID is the neighbor user.
	UserID int `json:"user_id"`

	// SharedCount is the number of books rated by both the neighbor and
	// the target user.
	SharedCount int `json:"shared_count"`

	// OverlapRatio is SharedCount divided by the target user's total
	// rated-book count.
	OverlapRatio float64 `json:"overlap_ratio"`
}

// Recommendation is one entry of the final ranked output.
type Recommendation struct {
	// BookID is the recommended book.
	BookID int `json:"book_id"`

	// NeighborRatingCount is how many top neighbors rated the book.
	NeighborRatingCount int `json:"neighbor_rating_count"`

	// NeighborMeanRating is the arithmetic mean of the top neighbors'
	// rating values for the book.
	NeighborMeanRating float64 `json:"neighbor_mean_rating"`

	// GlobalRatingCount is the book's platform-wide rating count.
	GlobalRatingCount int `json:"global_rating_count"`

	// AdjustedCount is the popularity-normalized evidence weight:
	// NeighborRatingCount * (NeighborRatingCount / GlobalRatingCount),
	// forced to zero when GlobalRatingCount is zero.
	AdjustedCount float64 `json:"adjusted_count"`

	// Score is NeighborMeanRating * AdjustedCount, the final ranking key.
	Score float64 `json:"score"`
}

// Repository is the read-only data source the engine runs against. The
// database package provides the production implementation; tests use
// in-memory fakes.
//
// Implementations must honor context cancellation and return the underlying
// error unwrapped; the engine wraps store failures in RepositoryError so
// callers can distinguish "store is down" from "nothing to recommend".
type Repository interface {
	// RatingsForUser returns every rating by the given user, most recent
	// first.
	RatingsForUser(ctx context.Context, userID int) ([]Rating, error)

	// OverlapCounts returns, for every user other than excludeUserID who
	// has rated at least one of bookIDs, the number of those books they
	// have rated.
	OverlapCounts(ctx context.Context, bookIDs []int, excludeUserID int) (map[int]int, error)

	// RatingsForUsers returns all ratings belonging to the given users in
	// a single fetch.
	RatingsForUsers(ctx context.Context, userIDs []int) ([]Rating, error)

	// BookMetadata returns metadata for the given books. Books without a
	// metadata row are simply absent from the result, never an error.
	BookMetadata(ctx context.Context, bookIDs []int) (map[int]BookMeta, error)
}

// Cache is the minimal byte-oriented cache the engine uses for response
// caching. Both the in-memory TTL cache and the Redis-backed cache satisfy
// it.
type Cache interface {
	// Get returns the cached value for key, if present and not expired.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key with the backend's configured TTL.
	Set(ctx context.Context, key string, value []byte)
}

var (
	nonLetterPattern  = regexp.MustCompile(`[^a-zA-Z\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// NormalizeTitle reduces a book title to its comparison form: non-letter
// characters removed, runs of whitespace collapsed to a single space, and
// everything lowercased. "The Hobbit: 75th Anniversary Ed." and
// "The Hobbit 75th Anniversary Ed" normalize to the same string.
func NormalizeTitle(title string) string {
	t := nonLetterPattern.ReplaceAllString(title, "")
	t = whitespacePattern.ReplaceAllString(t, " ")
	return strings.ToLower(strings.TrimSpace(t))
}
