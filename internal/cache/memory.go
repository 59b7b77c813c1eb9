// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

// Package cache provides the response cache backends used by the
// recommendation engine and the API layer.
//
// Two backends are available: an in-process TTL cache and a Redis-backed
// cache for multi-instance deployments. Both store opaque byte slices and
// satisfy the engine's cache interface.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shelfmate/shelfmate/internal/metrics"
	"github.com/shelfmate/shelfmate/internal/recommend"
)

const memoryCacheType = "memory"

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is a thread-safe in-process cache with TTL expiry and an optional
// entry cap. A background goroutine sweeps expired entries.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
	stop       chan struct{}
	stopOnce   sync.Once
}

var _ recommend.Cache = (*Memory)(nil)

// NewMemory creates a memory cache with the given TTL and entry cap.
// maxEntries of 0 means unbounded. Call Close to stop the sweeper.
func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	c := &Memory{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Get returns the cached value for key, or false when absent or expired.
func (c *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		metrics.RecordCacheAccess(memoryCacheType, false)
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		metrics.CacheEvictions.WithLabelValues(memoryCacheType).Inc()
		metrics.RecordCacheAccess(memoryCacheType, false)
		return nil, false
	}

	metrics.RecordCacheAccess(memoryCacheType, true)
	return entry.data, true
}

// Set stores value under key with the configured TTL. When the cache is at
// capacity the entry closest to expiry is dropped first.
func (c *Memory) Set(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[key]; !exists {
			c.evictOldestLocked()
		}
	}

	c.entries[key] = memoryEntry{
		data:      value,
		expiresAt: time.Now().Add(c.ttl),
	}
	metrics.CacheSize.WithLabelValues(memoryCacheType).Set(float64(len(c.entries)))
}

// Delete removes key from the cache. Missing keys are a no-op.
func (c *Memory) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Memory) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	metrics.CacheSize.WithLabelValues(memoryCacheType).Set(0)
}

// Len returns the current number of entries, expired or not.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the background sweeper. The cache remains usable.
func (c *Memory) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// evictOldestLocked removes the entry with the earliest expiry. Callers
// must hold the write lock.
func (c *Memory) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		metrics.CacheEvictions.WithLabelValues(memoryCacheType).Inc()
	}
}

func (c *Memory) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep removes expired entries.
func (c *Memory) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			metrics.CacheEvictions.WithLabelValues(memoryCacheType).Inc()
		}
	}
	metrics.CacheSize.WithLabelValues(memoryCacheType).Set(float64(len(c.entries)))
}
