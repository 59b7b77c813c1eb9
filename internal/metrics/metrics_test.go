// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendationRequests.WithLabelValues("ok"))

	RecordRecommendation("ok", 25*time.Millisecond)

	after := testutil.ToFloat64(RecommendationRequests.WithLabelValues("ok"))
	if after != before+1 {
		t.Errorf("recommendation counter = %v, want %v", after, before+1)
	}
}

func TestRecordDBQuery(t *testing.T) {
	errBefore := testutil.ToFloat64(DBQueryErrors.WithLabelValues("ratings_for_user"))

	RecordDBQuery("ratings_for_user", 5*time.Millisecond, nil)
	RecordDBQuery("ratings_for_user", 5*time.Millisecond, errors.New("timeout"))

	errAfter := testutil.ToFloat64(DBQueryErrors.WithLabelValues("ratings_for_user"))
	if errAfter != errBefore+1 {
		t.Errorf("error counter = %v, want %v (only the failed query counts)", errAfter, errBefore+1)
	}
}

func TestRecordCacheAccess(t *testing.T) {
	hitsBefore := testutil.ToFloat64(CacheHits.WithLabelValues("memory"))
	missesBefore := testutil.ToFloat64(CacheMisses.WithLabelValues("memory"))

	RecordCacheAccess("memory", true)
	RecordCacheAccess("memory", false)
	RecordCacheAccess("memory", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("memory")); got != hitsBefore+1 {
		t.Errorf("cache hits = %v, want %v", got, hitsBefore+1)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("memory")); got != missesBefore+2 {
		t.Errorf("cache misses = %v, want %v", got, missesBefore+2)
	}
}

func TestRecordTrendingRefresh(t *testing.T) {
	errBefore := testutil.ToFloat64(TrendingRefreshErrors)

	RecordTrendingRefresh(time.Second, 20, nil)
	if got := testutil.ToFloat64(TrendingSnapshotSize); got != 20 {
		t.Errorf("snapshot size gauge = %v, want 20", got)
	}

	RecordTrendingRefresh(time.Second, 0, errors.New("store down"))
	if got := testutil.ToFloat64(TrendingRefreshErrors); got != errBefore+1 {
		t.Errorf("refresh errors = %v, want %v", got, errBefore+1)
	}
	// A failed refresh must not clobber the last good snapshot size.
	if got := testutil.ToFloat64(TrendingSnapshotSize); got != 20 {
		t.Errorf("snapshot size after failure = %v, want 20", got)
	}
}
