// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

// Package metrics declares the Prometheus instrumentation for Shelfmate.
//
// All collectors are registered on the default registry via promauto and
// exposed on /metrics by the HTTP router.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation pipeline metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"outcome"}, // "ok", "empty", "no_ratings", "error"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "End-to-end duration of recommendation requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	RecommendationNeighbors = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_neighbors",
			Help:    "Number of neighbors used per recommendation request",
			Buckets: []float64{0, 1, 2, 5, 10, 15, 25, 50},
		},
	)

	RecommendationResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_results",
			Help:    "Number of books returned per recommendation request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "api_rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "memory", "redis"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry or capacity)",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	// Trending refresher metrics
	TrendingRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trending_refresh_duration_seconds",
			Help:    "Duration of trending snapshot refreshes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	TrendingRefreshErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trending_refresh_errors_total",
			Help: "Total number of failed trending refreshes",
		},
	)

	TrendingLastRefresh = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trending_last_refresh_timestamp",
			Help: "Unix timestamp of the last successful trending refresh",
		},
	)

	TrendingSnapshotSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trending_snapshot_books",
			Help: "Number of books in the current trending snapshot",
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)
)

// RecordRecommendation records a finished recommendation request.
func RecordRecommendation(outcome string, duration time.Duration) {
	RecommendationRequests.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordDBQuery records a database query duration and, on failure, an
// error count.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordCacheAccess records a cache lookup result.
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}

// RecordTrendingRefresh records a trending snapshot refresh.
func RecordTrendingRefresh(duration time.Duration, size int, err error) {
	TrendingRefreshDuration.Observe(duration.Seconds())
	if err != nil {
		TrendingRefreshErrors.Inc()
		return
	}
	TrendingLastRefresh.SetToCurrentTime()
	TrendingSnapshotSize.Set(float64(size))
}
