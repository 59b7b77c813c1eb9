// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package recommend

import (
	"context"
	"sort"
)

// FindNeighbors returns the users whose rated books overlap the target
// user's by at least minOverlapRatio. The returned slice is ordered by
// SharedCount descending (user ID ascending on ties); the order is
// diagnostic only, since the similarity ranker re-sorts by actual cosine
// similarity.
//
// An empty targetRatings slice yields an empty result: no overlap can be
// computed, and downstream stages fall back to target-only data.
//
// The qualification test is float64(shared) >= float64(total) * ratio,
// with no rounding of the threshold. A candidate exactly at the boundary
// qualifies.
func FindNeighbors(ctx context.Context, repo Repository, targetUserID int, targetRatings []Rating, minOverlapRatio float64) ([]Neighbor, error) {
	if len(targetRatings) == 0 {
		return nil, nil
	}

	bookIDs := make([]int, 0, len(targetRatings))
	for _, r := range targetRatings {
		bookIDs = append(bookIDs, r.BookID)
	}

	counts, err := repo.OverlapCounts(ctx, bookIDs, targetUserID)
	if err != nil {
		return nil, &RepositoryError{Op: "overlap counts", Err: err}
	}

	total := float64(len(targetRatings))
	required := total * minOverlapRatio

	neighbors := make([]Neighbor, 0, len(counts))
	for userID, shared := range counts {
		if userID == targetUserID {
			// The repository excludes the target by contract; this is
			// a defensive re-check.
			continue
		}
		if float64(shared) >= required {
			neighbors = append(neighbors, Neighbor{
				UserID:       userID,
				SharedCount:  shared,
				OverlapRatio: float64(shared) / total,
			})
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].SharedCount != neighbors[j].SharedCount {
			return neighbors[i].SharedCount > neighbors[j].SharedCount
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})

	return neighbors, nil
}
