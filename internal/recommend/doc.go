// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

// Package recommend implements the collaborative-filtering recommendation
// engine.
//
// Recommendations for a user are computed in four sequential stages, each
// feeding the next:
//
//  1. Overlap selection: find candidate neighbor users whose set of rated
//     books overlaps the target user's by at least a relative threshold
//     (FindNeighbors).
//  2. Matrix construction: assemble a sparse user-by-book rating matrix for
//     the target user plus all candidates, with dense 0-based index maps
//     (BuildMatrix).
//  3. Similarity ranking: compute cosine similarity between the target
//     user's row and every other row and keep the top-K most similar rows
//     (RankNeighbors).
//  4. Scoring: aggregate the top neighbors' ratings per book, normalize by
//     each book's global popularity, drop books the user already knows, and
//     rank the survivors (ScoreAndRank).
//
// Every stage is request-scoped: index maps, matrices, and neighbor sets are
// rebuilt per call and never shared across requests, so concurrent calls to
// Engine.Recommend need no locking beyond what the Repository implementation
// provides.
//
// The package deliberately has no dependencies on other internal packages.
// Data access goes through the Repository interface, implemented by the
// database package, and response caching goes through the small Cache
// interface, implemented by the cache package.
package recommend
