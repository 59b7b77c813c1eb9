// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package recommend

import (
	"context"
	"sort"
	"strings"
)

// ScoreAndRank turns the top neighbors' rating rows into the final ranked
// recommendation list. In order it:
//
//  1. Aggregates the neighbor rows per book (count and mean rating).
//  2. Joins each book with its global rating count; books with no metadata
//     row are kept with a global count of zero, never dropped silently.
//  3. Computes the popularity-normalized adjusted count and score.
//  4. Removes books the target user already rated, by exact ID and by
//     normalized title, so duplicate editions of a known book never
//     surface.
//  5. Applies the minimum-evidence floors (strictly more than
//     cfg.MinNeighborRatings ratings, mean strictly above
//     cfg.MinNeighborMean).
//  6. Sorts by score descending, neighbor count descending, book ID
//     ascending.
//
// An empty neighborRows slice, or a list where nothing survives filtering,
// yields an empty result and no error.
func ScoreAndRank(ctx context.Context, repo Repository, m *Matrix, neighborRows []int, targetUserID int, targetRatings []Rating, cfg Config) ([]Recommendation, error) {
	if len(neighborRows) == 0 {
		return nil, nil
	}

	type aggregate struct {
		count int
		sum   float64
	}
	byBook := make(map[int]*aggregate)

	for _, row := range neighborRows {
		if m.UserAt(row) == targetUserID {
			// Never let the target's own ratings count as neighbor
			// evidence.
			continue
		}
		cols, vals := m.Row(row)
		for i, col := range cols {
			bookID := m.BookAt(col)
			agg := byBook[bookID]
			if agg == nil {
				agg = &aggregate{}
				byBook[bookID] = agg
			}
			agg.count++
			agg.sum += vals[i]
		}
	}

	if len(byBook) == 0 {
		return nil, nil
	}

	ratedIDs := make(map[int]struct{}, len(targetRatings))
	for _, r := range targetRatings {
		ratedIDs[r.BookID] = struct{}{}
	}

	// One combined metadata fetch covers both the candidates (global
	// counts) and the target's rated books (titles for edition matching).
	metaIDs := make([]int, 0, len(byBook)+len(ratedIDs))
	for bookID := range byBook {
		metaIDs = append(metaIDs, bookID)
	}
	for bookID := range ratedIDs {
		if _, isCandidate := byBook[bookID]; !isCandidate {
			metaIDs = append(metaIDs, bookID)
		}
	}

	meta, err := repo.BookMetadata(ctx, metaIDs)
	if err != nil {
		return nil, &RepositoryError{Op: "book metadata", Err: err}
	}

	ratedTitles := make(map[string]struct{}, len(ratedIDs))
	for bookID := range ratedIDs {
		if bm, ok := meta[bookID]; ok && bm.NormalizedTitle != "" {
			ratedTitles[strings.ToLower(bm.NormalizedTitle)] = struct{}{}
		}
	}

	recs := make([]Recommendation, 0, len(byBook))
	for bookID, agg := range byBook {
		if _, known := ratedIDs[bookID]; known {
			continue
		}

		bm, hasMeta := meta[bookID]
		if hasMeta && bm.NormalizedTitle != "" {
			if _, dup := ratedTitles[strings.ToLower(bm.NormalizedTitle)]; dup {
				continue
			}
		}

		mean := agg.sum / float64(agg.count)
		if agg.count <= cfg.MinNeighborRatings || mean <= cfg.MinNeighborMean {
			continue
		}

		global := 0
		if hasMeta {
			global = bm.GlobalRatingCount
		}

		// A zero global count would divide by zero; the defined
		// behavior is zero evidence weight, so the book ranks last
		// rather than crashing the request.
		var adjusted float64
		if global > 0 {
			adjusted = float64(agg.count) * (float64(agg.count) / float64(global))
		}

		recs = append(recs, Recommendation{
			BookID:              bookID,
			NeighborRatingCount: agg.count,
			NeighborMeanRating:  mean,
			GlobalRatingCount:   global,
			AdjustedCount:       adjusted,
			Score:               mean * adjusted,
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		if recs[i].NeighborRatingCount != recs[j].NeighborRatingCount {
			return recs[i].NeighborRatingCount > recs[j].NeighborRatingCount
		}
		return recs[i].BookID < recs[j].BookID
	})

	return recs, nil
}
