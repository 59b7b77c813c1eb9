// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package recommend

import (
	"context"
	"sort"
)

// fakeRepo is an in-memory Repository for pipeline tests. Each operation
// can be made to fail by setting failOp to its name.
type fakeRepo struct {
	ratings map[int][]Rating // keyed by user ID
	meta    map[int]BookMeta

	failOp  string
	failErr error
}

func (f *fakeRepo) fail(op string) error {
	if f.failOp == op {
		return f.failErr
	}
	return nil
}

func (f *fakeRepo) RatingsForUser(ctx context.Context, userID int) ([]Rating, error) {
	if err := f.fail("RatingsForUser"); err != nil {
		return nil, err
	}
	rs := append([]Rating(nil), f.ratings[userID]...)
	sort.Slice(rs, func(i, j int) bool { return rs[i].RatedAt.After(rs[j].RatedAt) })
	return rs, nil
}

func (f *fakeRepo) OverlapCounts(ctx context.Context, bookIDs []int, excludeUserID int) (map[int]int, error) {
	if err := f.fail("OverlapCounts"); err != nil {
		return nil, err
	}
	wanted := make(map[int]struct{}, len(bookIDs))
	for _, id := range bookIDs {
		wanted[id] = struct{}{}
	}
	counts := make(map[int]int)
	for userID, rs := range f.ratings {
		if userID == excludeUserID {
			continue
		}
		for _, r := range rs {
			if _, ok := wanted[r.BookID]; ok {
				counts[userID]++
			}
		}
	}
	return counts, nil
}

func (f *fakeRepo) RatingsForUsers(ctx context.Context, userIDs []int) ([]Rating, error) {
	if err := f.fail("RatingsForUsers"); err != nil {
		return nil, err
	}
	var out []Rating
	for _, userID := range userIDs {
		out = append(out, f.ratings[userID]...)
	}
	return out, nil
}

func (f *fakeRepo) BookMetadata(ctx context.Context, bookIDs []int) (map[int]BookMeta, error) {
	if err := f.fail("BookMetadata"); err != nil {
		return nil, err
	}
	out := make(map[int]BookMeta)
	for _, id := range bookIDs {
		if bm, ok := f.meta[id]; ok {
			out[id] = bm
		}
	}
	return out, nil
}

var _ Repository = (*fakeRepo)(nil)

// rate is shorthand for building test ratings.
func rate(userID, bookID, value int) Rating {
	return Rating{UserID: userID, BookID: bookID, Value: value}
}
