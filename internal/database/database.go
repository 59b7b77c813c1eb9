// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

// Package database provides the DuckDB-backed store for Shelfmate: users,
// the book catalog, ratings, and reading shelves. It implements the
// recommendation engine's repository interface and the trending query.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/shelfmate/shelfmate/internal/config"
	"github.com/shelfmate/shelfmate/internal/recommend"
)

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn    *sql.DB
	cfg     config.DatabaseConfig
	logger  zerolog.Logger
	breaker *queryBreaker
}

var _ recommend.Repository = (*DB)(nil)

// New opens (or creates) the DuckDB database and initializes the schema.
// An empty cfg.Path opens an in-memory database.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg config.DatabaseConfig, logger zerolog.Logger) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	connStr := ""
	if cfg.Path != "" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dbDir, err)
			}
		}
		connStr = fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
			cfg.Path, threads, cfg.MaxMemory)
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DB{
		conn:    conn,
		cfg:     cfg,
		logger:  logger.With().Str("component", "database").Logger(),
		breaker: newQueryBreaker("duckdb", logger),
	}

	// DuckDB is an embedded engine; a single writer connection avoids
	// write-write conflicts while still allowing concurrent reads through
	// the same handle.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	if err := db.initSchema(context.Background()); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	if cfg.SeedSampleData {
		if err := db.seedSampleData(context.Background()); err != nil {
			closeQuietly(conn)
			return nil, fmt.Errorf("seed sample data: %w", err)
		}
	}

	db.logger.Info().
		Str("path", cfg.Path).
		Int("threads", threads).
		Msg("database ready")

	return db, nil
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close shuts the database down.
func (db *DB) Close() error {
	db.logger.Debug().Msg("closing database")
	return db.conn.Close()
}

// inPlaceholders returns "?, ?, ..." with n placeholders and the matching
// args slice for an IN clause over ints.
func inPlaceholders(ids []int) (string, []any) {
	placeholders := ""
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args[i] = id
	}
	return placeholders, args
}

// timed runs fn and records the query duration and outcome under op.
func (db *DB) timed(op string, fn func() error) error {
	start := time.Now()
	err := db.breaker.execute(fn)
	recordQuery(op, time.Since(start), err)
	return err
}
