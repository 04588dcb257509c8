package storage

import (
	"context"
	"time"
)

// Bookmark represents one saved link.
type Bookmark struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the persistence interface for bookmarks.
//
// The store exclusively owns the authoritative bookmark collection.
// Callers treat query results as disposable snapshots and must never
// patch them incrementally; consistency comes from refetching after a
// change notification.
type Store interface {
	// CreateBookmark inserts a bookmark owned by the given identity.
	// ID and CreatedAt are assigned by the store. Returns the new ID.
	CreateBookmark(ctx context.Context, title, url, owner string) (string, error)

	// DeleteBookmark removes the bookmark with the given ID.
	// Deleting a bookmark that does not exist is not an error.
	DeleteBookmark(ctx context.Context, id string) error

	// ListBookmarks returns all bookmarks owned by the given identity,
	// ordered by CreatedAt descending (ID descending as tiebreak so the
	// order is total even for equal timestamps).
	ListBookmarks(ctx context.Context, owner string) ([]*Bookmark, error)
}
