package databasesql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linkpg/linkpg/driver"
	"github.com/linkpg/linkpg/storage"
)

// Store implements storage.Store using the database/sql driver.
type Store struct {
	driver *Driver
}

// NewStore creates a new Store backed by the given driver.
func NewStore(d *Driver) *Store {
	return &Store{driver: d}
}

// getExecutor returns the transaction from context if present, otherwise the pool executor.
func (s *Store) getExecutor(ctx context.Context) driver.Executor {
	if exec := driver.ExecutorFromContext(ctx); exec != nil {
		return exec
	}
	return s.driver.GetExecutor()
}

// CreateBookmark inserts a bookmark and returns its store-assigned ID.
func (s *Store) CreateBookmark(ctx context.Context, title, url, owner string) (string, error) {
	if owner == "" {
		return "", fmt.Errorf("owner is required")
	}

	query := `
		INSERT INTO bookmarks (title, url, owner)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id string
	if err := s.getExecutor(ctx).QueryRow(ctx, query, title, url, owner).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to create bookmark: %w", err)
	}
	return id, nil
}

// DeleteBookmark removes the bookmark with the given ID.
func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	query := `DELETE FROM bookmarks WHERE id = $1`

	if _, err := s.getExecutor(ctx).Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return nil
}

// ListBookmarks returns all bookmarks owned by the given identity,
// newest first.
func (s *Store) ListBookmarks(ctx context.Context, owner string) ([]*storage.Bookmark, error) {
	query := `
		SELECT id, title, url, owner, created_at
		FROM bookmarks
		WHERE owner = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.getExecutor(ctx).Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []*storage.Bookmark
	for rows.Next() {
		var b storage.Bookmark
		if err := rows.Scan(&b.ID, &b.Title, &b.URL, &b.Owner, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookmarks: %w", err)
	}

	return bookmarks, nil
}

// GetBookmark retrieves a single bookmark by ID.
func (s *Store) GetBookmark(ctx context.Context, id string) (*storage.Bookmark, error) {
	query := `
		SELECT id, title, url, owner, created_at
		FROM bookmarks
		WHERE id = $1
	`

	var b storage.Bookmark
	err := s.getExecutor(ctx).QueryRow(ctx, query, id).Scan(&b.ID, &b.Title, &b.URL, &b.Owner, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bookmark not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return &b, nil
}

// Compile-time check
var _ storage.Store = (*Store)(nil)
