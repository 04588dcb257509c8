package pgxv5

import (
	"context"
	"testing"

	"github.com/linkpg/linkpg/internal/testutil"
)

func TestStore_CreateBookmark(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.CleanTables(ctx); err != nil {
		t.Fatalf("Failed to clean tables: %v", err)
	}

	store := NewStore(New(db.Pool))

	id, err := store.CreateBookmark(ctx, "Go", "https://go.dev", "user-1")
	if err != nil {
		t.Fatalf("CreateBookmark() error = %v", err)
	}
	if id == "" {
		t.Fatal("CreateBookmark() returned empty ID")
	}

	got, err := store.GetBookmark(ctx, id)
	if err != nil {
		t.Fatalf("GetBookmark() error = %v", err)
	}
	if got.Title != "Go" || got.URL != "https://go.dev" || got.Owner != "user-1" {
		t.Errorf("GetBookmark() = %+v, want created row", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not assigned by the store")
	}
}

func TestStore_CreateBookmarkRequiresOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Close()

	store := NewStore(New(db.Pool))

	if _, err := store.CreateBookmark(context.Background(), "Go", "https://go.dev", ""); err == nil {
		t.Fatal("CreateBookmark() with empty owner succeeded, want error")
	}
}

func TestStore_DeleteBookmark(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.CleanTables(ctx); err != nil {
		t.Fatalf("Failed to clean tables: %v", err)
	}

	store := NewStore(New(db.Pool))
	id := db.SeedBookmark(ctx, t, "Go", "https://go.dev", "user-1")

	if err := store.DeleteBookmark(ctx, id); err != nil {
		t.Fatalf("DeleteBookmark() error = %v", err)
	}
	if _, err := store.GetBookmark(ctx, id); err == nil {
		t.Error("GetBookmark() after delete succeeded, want error")
	}

	// Deleting a row that is already gone is not an error.
	if err := store.DeleteBookmark(ctx, id); err != nil {
		t.Errorf("DeleteBookmark() second call error = %v", err)
	}
}

func TestStore_ListBookmarks(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.CleanTables(ctx); err != nil {
		t.Fatalf("Failed to clean tables: %v", err)
	}

	store := NewStore(New(db.Pool))

	db.SeedBookmark(ctx, t, "First", "https://first.example", "user-1")
	db.SeedBookmark(ctx, t, "Second", "https://second.example", "user-1")
	db.SeedBookmark(ctx, t, "Other", "https://other.example", "user-2")

	bookmarks, err := store.ListBookmarks(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListBookmarks() error = %v", err)
	}
	if len(bookmarks) != 2 {
		t.Fatalf("ListBookmarks() returned %d rows, want 2", len(bookmarks))
	}
	for _, b := range bookmarks {
		if b.Owner != "user-1" {
			t.Errorf("ListBookmarks() returned row owned by %q", b.Owner)
		}
	}
	// Newest first.
	if bookmarks[0].CreatedAt.Before(bookmarks[1].CreatedAt) {
		t.Errorf("ListBookmarks() not ordered newest first: %v before %v",
			bookmarks[0].CreatedAt, bookmarks[1].CreatedAt)
	}

	empty, err := store.ListBookmarks(ctx, "user-3")
	if err != nil {
		t.Fatalf("ListBookmarks() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ListBookmarks() for unknown owner returned %d rows, want 0", len(empty))
	}
}
