// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package database

import (
	"context"
	"fmt"
)

// schemaStatements is executed in order on startup. All statements are
// idempotent so restarts against an existing database file are safe.
var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS seq_user_id START 1`,

	`CREATE TABLE IF NOT EXISTS users (
		user_id    INTEGER PRIMARY KEY DEFAULT nextval('seq_user_id'),
		name       VARCHAR NOT NULL,
		user_name  VARCHAR NOT NULL UNIQUE,
		birth_year INTEGER,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,

	`CREATE TABLE IF NOT EXISTS books (
		book_id          INTEGER PRIMARY KEY,
		title            VARCHAR NOT NULL,
		mod_title        VARCHAR NOT NULL,
		isbn             VARCHAR,
		language_code    VARCHAR,
		publication_year INTEGER,
		authors          VARCHAR,
		cover_image_url  VARCHAR,
		rating_count     INTEGER NOT NULL DEFAULT 0,
		average_rating   DOUBLE NOT NULL DEFAULT 0.0
	)`,

	`CREATE TABLE IF NOT EXISTS user_book_ratings (
		user_id    INTEGER NOT NULL,
		book_id    INTEGER NOT NULL,
		rating     INTEGER NOT NULL,
		rated_date TIMESTAMP NOT NULL DEFAULT current_timestamp,
		PRIMARY KEY (user_id, book_id)
	)`,

	`CREATE TABLE IF NOT EXISTS listed_books (
		user_id     INTEGER NOT NULL,
		book_id     INTEGER NOT NULL,
		listed_date TIMESTAMP NOT NULL DEFAULT current_timestamp,
		PRIMARY KEY (user_id, book_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_ratings_book ON user_book_ratings (book_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_user ON user_book_ratings (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_date ON user_book_ratings (rated_date)`,
	`CREATE INDEX IF NOT EXISTS idx_books_mod_title ON books (mod_title)`,
	`CREATE INDEX IF NOT EXISTS idx_listed_book ON listed_books (book_id)`,
}

func (db *DB) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
