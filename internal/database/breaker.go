// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package database

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/shelfmate/shelfmate/internal/metrics"
)

// queryBreaker shields the service from a store that is failing hard.
// After five consecutive failures the breaker opens and queries fail fast
// for thirty seconds before a half-open probe.
type queryBreaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[struct{}]
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newQueryBreaker(name string, logger zerolog.Logger) *queryBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A missing row is a normal outcome and must not trip the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	}
	return &queryBreaker{
		name: name,
		cb:   gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// execute runs fn through the breaker and records the result.
func (b *queryBreaker) execute(fn func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})

	result := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "rejected"
	case err != nil && !errors.Is(err, ErrNotFound):
		result = "failure"
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, result).Inc()

	return err
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
