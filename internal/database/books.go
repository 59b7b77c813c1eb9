// Shelfmate - Book Recommendation Service
// Copyright 2026 Shelfmate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfmate/shelfmate

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shelfmate/shelfmate/internal/recommend"
)

// Book is a catalog row.
type Book struct {
	BookID          int     `json:"book_id"`
	Title           string  `json:"title"`
	NormalizedTitle string  `json:"-"`
	ISBN            string  `json:"isbn,omitempty"`
	LanguageCode    string  `json:"language_code,omitempty"`
	PublicationYear int     `json:"publication_year,omitempty"`
	Authors         string  `json:"authors,omitempty"`
	CoverImageURL   string  `json:"cover_image_url,omitempty"`
	RatingCount     int     `json:"rating_count"`
	AverageRating   float64 `json:"average_rating"`
}

// User is an account row.
type User struct {
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	UserName  string    `json:"user_name"`
	BirthYear int       `json:"birth_year,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UpsertBook inserts or updates a catalog row. The normalized title is
// always derived from the title here so the two can never diverge.
func (db *DB) UpsertBook(ctx context.Context, b Book) error {
	return db.timed("upsert_book", func() error {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO books (book_id, title, mod_title, isbn, language_code,
				publication_year, authors, cover_image_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (book_id) DO UPDATE SET
				title = excluded.title,
				mod_title = excluded.mod_title,
				isbn = excluded.isbn,
				language_code = excluded.language_code,
				publication_year = excluded.publication_year,
				authors = excluded.authors,
				cover_image_url = excluded.cover_image_url`,
			b.BookID, b.Title, recommend.NormalizeTitle(b.Title), b.ISBN,
			b.LanguageCode, b.PublicationYear, b.Authors, b.CoverImageURL)
		if err != nil {
			return fmt.Errorf("upsert book %d: %w", b.BookID, err)
		}
		return nil
	})
}

// GetBook returns one catalog row, or ErrNotFound.
func (db *DB) GetBook(ctx context.Context, bookID int) (Book, error) {
	var b Book
	err := db.timed("get_book", func() error {
		row := db.conn.QueryRowContext(ctx, `
			SELECT book_id, title, mod_title, COALESCE(isbn, ''),
				COALESCE(language_code, ''), COALESCE(publication_year, 0),
				COALESCE(authors, ''), COALESCE(cover_image_url, ''),
				rating_count, average_rating
			FROM books WHERE book_id = ?`, bookID)
		err := row.Scan(&b.BookID, &b.Title, &b.NormalizedTitle, &b.ISBN,
			&b.LanguageCode, &b.PublicationYear, &b.Authors, &b.CoverImageURL,
			&b.RatingCount, &b.AverageRating)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get book %d: %w", bookID, err)
		}
		return nil
	})
	if err != nil {
		return Book{}, err
	}
	return b, nil
}

// CreateUser inserts a user and returns the assigned ID.
func (db *DB) CreateUser(ctx context.Context, name, userName string, birthYear int) (int, error) {
	var userID int
	err := db.timed("create_user", func() error {
		row := db.conn.QueryRowContext(ctx, `
			INSERT INTO users (name, user_name, birth_year)
			VALUES (?, ?, ?)
			RETURNING user_id`, name, userName, birthYear)
		if err := row.Scan(&userID); err != nil {
			return fmt.Errorf("create user %q: %w", userName, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// GetUser returns one account row, or ErrNotFound.
func (db *DB) GetUser(ctx context.Context, userID int) (User, error) {
	var u User
	err := db.timed("get_user", func() error {
		row := db.conn.QueryRowContext(ctx, `
			SELECT user_id, name, user_name, COALESCE(birth_year, 0), created_at
			FROM users WHERE user_id = ?`, userID)
		err := row.Scan(&u.UserID, &u.Name, &u.UserName, &u.BirthYear, &u.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get user %d: %w", userID, err)
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// AddToShelf puts a book on a user's reading shelf. Re-adding is a no-op.
func (db *DB) AddToShelf(ctx context.Context, userID, bookID int) error {
	return db.timed("add_to_shelf", func() error {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO listed_books (user_id, book_id, listed_date)
			VALUES (?, ?, current_timestamp)
			ON CONFLICT (user_id, book_id) DO NOTHING`, userID, bookID)
		if err != nil {
			return fmt.Errorf("add book %d to shelf of user %d: %w", bookID, userID, err)
		}
		return nil
	})
}

// RemoveFromShelf takes a book off a user's reading shelf.
func (db *DB) RemoveFromShelf(ctx context.Context, userID, bookID int) error {
	return db.timed("remove_from_shelf", func() error {
		_, err := db.conn.ExecContext(ctx, `
			DELETE FROM listed_books WHERE user_id = ? AND book_id = ?`, userID, bookID)
		if err != nil {
			return fmt.Errorf("remove book %d from shelf of user %d: %w", bookID, userID, err)
		}
		return nil
	})
}

// ShelfForUser returns the books on a user's reading shelf, most recently
// listed first.
func (db *DB) ShelfForUser(ctx context.Context, userID int) ([]Book, error) {
	var books []Book
	err := db.timed("shelf_for_user", func() error {
		rows, err := db.conn.QueryContext(ctx, `
			SELECT b.book_id, b.title, b.mod_title, COALESCE(b.isbn, ''),
				COALESCE(b.language_code, ''), COALESCE(b.publication_year, 0),
				COALESCE(b.authors, ''), COALESCE(b.cover_image_url, ''),
				b.rating_count, b.average_rating
			FROM books b
			JOIN listed_books l ON l.book_id = b.book_id
			WHERE l.user_id = ?
			ORDER BY l.listed_date DESC, b.book_id ASC`, userID)
		if err != nil {
			return fmt.Errorf("query shelf for user %d: %w", userID, err)
		}
		defer closeQuietly(rows)

		for rows.Next() {
			var b Book
			if err := rows.Scan(&b.BookID, &b.Title, &b.NormalizedTitle, &b.ISBN,
				&b.LanguageCode, &b.PublicationYear, &b.Authors, &b.CoverImageURL,
				&b.RatingCount, &b.AverageRating); err != nil {
				return fmt.Errorf("scan shelf row: %w", err)
			}
			books = append(books, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}
