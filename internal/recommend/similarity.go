// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package recommend

import (
	"math"
	"sort"
)

// CosineSimilarities computes the cosine similarity between the target row
// and every row of the matrix, including the target row itself (which is
// exactly 1 for any non-zero row). Similarity involving an all-zero row is
// defined as 0, never NaN.
func CosineSimilarities(m *Matrix, targetRow int) []float64 {
	sims := make([]float64, m.Rows())

	tCols, tVals := m.Row(targetRow)
	tNorm := norm(tVals)
	if tNorm == 0 {
		return sims
	}

	for row := 0; row < m.Rows(); row++ {
		cols, vals := m.Row(row)
		n := norm(vals)
		if n == 0 {
			continue
		}
		dot := sparseDot(tCols, tVals, cols, vals)
		sims[row] = dot / (tNorm * n)
	}

	return sims
}

// RankNeighbors returns the dense row indices of the up-to-k rows most
// similar to targetRow, best first. Ties are broken by ascending row index
// so repeated runs on the same data produce identical output.
//
// The selection admits k+1 candidates before removing the target row: the
// target's self-similarity entry would otherwise crowd out a real neighbor
// and silently shrink the result to k-1.
func RankNeighbors(m *Matrix, targetRow, k int) []int {
	if k <= 0 {
		return nil
	}

	sims := CosineSimilarities(m, targetRow)

	order := make([]int, m.Rows())
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if sims[a] != sims[b] {
			return sims[a] > sims[b]
		}
		return a < b
	})

	if len(order) > k+1 {
		order = order[:k+1]
	}

	neighbors := make([]int, 0, k)
	for _, row := range order {
		if row == targetRow {
			continue
		}
		neighbors = append(neighbors, row)
	}
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// sparseDot computes the dot product of two sparse rows whose column
// indices are sorted ascending.
func sparseDot(aCols []int, aVals []float64, bCols []int, bVals []float64) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(aCols) && j < len(bCols) {
		switch {
		case aCols[i] == bCols[j]:
			dot += aVals[i] * bVals[j]
			i++
			j++
		case aCols[i] < bCols[j]:
			i++
		default:
			j++
		}
	}
	return dot
}

// norm returns the L2 norm of a sparse row's values.
func norm(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v * v
	}
	return math.Sqrt(sum)
}
