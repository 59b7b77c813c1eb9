// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package recommend

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// memCache is a minimal Cache for engine tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	return data, ok
}

func (c *memCache) Set(ctx context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// scenarioRepo builds a repository where the target (user 1) rated books
// 1-5 and users 2-4 qualify as neighbors recommending book 6.
func scenarioRepo() *fakeRepo {
	ratings := map[int][]Rating{
		1: {rate(1, 1, 5), rate(1, 2, 5), rate(1, 3, 5), rate(1, 4, 5), rate(1, 5, 5)},
	}
	for _, userID := range []int{2, 3, 4} {
		ratings[userID] = []Rating{
			rate(userID, 1, 5), rate(userID, 2, 5), rate(userID, 6, 4),
		}
	}
	return &fakeRepo{
		ratings: ratings,
		meta: map[int]BookMeta{
			1: {BookID: 1, GlobalRatingCount: 50, NormalizedTitle: "book one"},
			2: {BookID: 2, GlobalRatingCount: 40, NormalizedTitle: "book two"},
			3: {BookID: 3, GlobalRatingCount: 30, NormalizedTitle: "book three"},
			4: {BookID: 4, GlobalRatingCount: 20, NormalizedTitle: "book four"},
			5: {BookID: 5, GlobalRatingCount: 10, NormalizedTitle: "book five"},
			6: {BookID: 6, GlobalRatingCount: 12, NormalizedTitle: "book six"},
		},
	}
}

func newTestEngine(t *testing.T, repo Repository, cfg Config) *Engine {
	t.Helper()

	e, err := NewEngine(repo, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func TestNewEngineValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(nil, DefaultConfig(), zerolog.Nop()); err == nil {
		t.Error("expected error for nil repository")
	}

	bad := DefaultConfig()
	bad.MinOverlapRatio = 1.5
	if _, err := NewEngine(&fakeRepo{}, bad, zerolog.Nop()); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestEngineRecommendEndToEnd(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, scenarioRepo(), DefaultConfig())

	recs, err := e.Recommend(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1: %+v", len(recs), recs)
	}
	if recs[0].BookID != 6 {
		t.Errorf("BookID = %d, want 6", recs[0].BookID)
	}
	if recs[0].Score != 3.0 {
		t.Errorf("Score = %v, want 3.0", recs[0].Score)
	}
}

func TestEngineRecommendNoRatings(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &fakeRepo{ratings: map[int][]Rating{}}, DefaultConfig())

	_, err := e.Recommend(context.Background(), 99)
	if !errors.Is(err, ErrNoRatings) {
		t.Fatalf("error = %v, want ErrNoRatings", err)
	}
}

func TestEngineRecommendNoQualifyingNeighbors(t *testing.T) {
	t.Parallel()

	// Nobody shares 20% of the target's books: neighbors are empty, the
	// degenerate single-row matrix flows through, and the result is an
	// empty list rather than an error.
	repo := &fakeRepo{
		ratings: map[int][]Rating{
			1: {rate(1, 1, 5), rate(1, 2, 5), rate(1, 3, 5)},
			2: {rate(2, 99, 4)},
		},
		meta: map[int]BookMeta{},
	}
	e := newTestEngine(t, repo, DefaultConfig())

	recs, err := e.Recommend(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("got %d recommendations, want 0", len(recs))
	}
}

func TestEngineRecommendRepositoryFailure(t *testing.T) {
	t.Parallel()

	repo := scenarioRepo()
	repo.failOp = "RatingsForUser"
	repo.failErr = errors.New("connection refused")

	e := newTestEngine(t, repo, DefaultConfig())

	_, err := e.Recommend(context.Background(), 1)
	if !IsRepositoryUnavailable(err) {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestEngineRecommendDeterministic(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.CacheEnabled = false
	e := newTestEngine(t, scenarioRepo(), cfg)

	first, err := e.Recommend(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := e.Recommend(context.Background(), 1)
		if err != nil {
			t.Fatalf("Recommend() run %d error = %v", i, err)
		}
		againJSON, err := json.Marshal(again)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(firstJSON, againJSON) {
			t.Fatalf("run %d output differs:\n%s\n%s", i, firstJSON, againJSON)
		}
	}
}

func TestEngineRecommendCaching(t *testing.T) {
	t.Parallel()

	repo := scenarioRepo()
	e := newTestEngine(t, repo, DefaultConfig())
	e.SetCache(newMemCache())

	if _, err := e.Recommend(context.Background(), 1); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	// Break the store: a cached response must still be served.
	repo.failOp = "RatingsForUser"
	repo.failErr = errors.New("store down")

	recs, err := e.Recommend(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recommend() with cache error = %v", err)
	}
	if len(recs) != 1 || recs[0].BookID != 6 {
		t.Errorf("cached response = %+v, want book 6", recs)
	}

	stats := e.GetStats()
	if stats.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1", stats.CacheHits)
	}
	if stats.CacheMisses != 1 {
		t.Errorf("CacheMisses = %d, want 1", stats.CacheMisses)
	}
}

func TestEngineStats(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, scenarioRepo(), DefaultConfig())

	for i := 0; i < 3; i++ {
		if _, err := e.Recommend(context.Background(), 1); err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
	}

	if got := e.GetStats().RequestCount; got != 3 {
		t.Errorf("RequestCount = %d, want 3", got)
	}
}
