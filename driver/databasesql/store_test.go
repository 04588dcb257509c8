package databasesql

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("Failed to ping database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("TRUNCATE TABLE bookmarks CASCADE"); err != nil {
		t.Fatalf("Failed to truncate bookmarks: %v", err)
	}
	return db
}

func TestStore_CreateAndGetBookmark(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	store := NewStore(New(db))

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
}

func TestStore_DeleteBookmark(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	store := NewStore(New(db))

	id, err := store.CreateBookmark(ctx, "Go", "https://go.dev", "user-1")
	if err != nil {
		t.Fatalf("CreateBookmark() error = %v", err)
	}

	if err := store.DeleteBookmark(ctx, id); err != nil {
		t.Fatalf("DeleteBookmark() error = %v", err)
	}
	if _, err := store.GetBookmark(ctx, id); err == nil {
		t.Error("GetBookmark() after delete succeeded, want error")
	}
	if err := store.DeleteBookmark(ctx, id); err != nil {
		t.Errorf("DeleteBookmark() second call error = %v", err)
	}
}

func TestStore_ListBookmarksFiltersByOwner(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	store := NewStore(New(db))

	for _, row := range []struct{ title, url, owner string }{
		{"First", "https://first.example", "user-1"},
		{"Second", "https://second.example", "user-1"},
		{"Other", "https://other.example", "user-2"},
	} {
		if _, err := store.CreateBookmark(ctx, row.title, row.url, row.owner); err != nil {
			t.Fatalf("CreateBookmark(%q) error = %v", row.title, err)
		}
	}

	bookmarks, err := store.ListBookmarks(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListBookmarks() error = %v", err)
	}
	if len(bookmarks) != 2 {
		t.Fatalf("ListBookmarks() returned %d rows, want 2", len(bookmarks))
	}
	if bookmarks[0].CreatedAt.Before(bookmarks[1].CreatedAt) {
		t.Errorf("ListBookmarks() not ordered newest first")
	}
}

func TestDriver_ListenerNotSupported(t *testing.T) {
	drv := New(nil)

	if drv.SupportsListener() {
		t.Error("SupportsListener() = true, want false")
	}
	if _, err := drv.GetListener(context.Background()); err == nil {
		t.Error("GetListener() succeeded, want error")
	}
}
