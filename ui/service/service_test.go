package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/linkpg/linkpg"
	"github.com/linkpg/linkpg/driver"
	"github.com/linkpg/linkpg/storage"
)

// stubStore is a minimal in-memory storage.Store for service-level tests.
type stubStore struct {
	mu        sync.Mutex
	nextID    int
	bookmarks []*storage.Bookmark
}

func (s *stubStore) CreateBookmark(ctx context.Context, title, url, owner string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("id-%04d", s.nextID)
	s.bookmarks = append(s.bookmarks, &storage.Bookmark{
		ID: id, Title: title, URL: url, Owner: owner, CreatedAt: time.Now(),
	})
	return id, nil
}

func (s *stubStore) DeleteBookmark(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.bookmarks {
		if b.ID == id {
			s.bookmarks = append(s.bookmarks[:i], s.bookmarks[i+1:]...)
			break
		}
	}
	return nil
}

func (s *stubStore) ListBookmarks(ctx context.Context, owner string) ([]*storage.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*storage.Bookmark
	for _, b := range s.bookmarks {
		if b.Owner == owner {
			dup := *b
			out = append(out, &dup)
		}
	}
	return out, nil
}

// stubDriver satisfies driver.Driver with an in-memory store and no LISTEN
// support.
type stubDriver struct {
	store *stubStore
}

func (d *stubDriver) GetExecutor() driver.Executor                 { return nil }
func (d *stubDriver) UnwrapExecutor(tx struct{}) driver.ExecutorTx { return nil }
func (d *stubDriver) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	return nil, errors.New("transactions not supported")
}
func (d *stubDriver) PoolIsSet() bool         { return true }
func (d *stubDriver) GetStore() storage.Store { return d.store }
func (d *stubDriver) SupportsListener() bool  { return false }
func (d *stubDriver) SupportsNotify() bool    { return false }
func (d *stubDriver) GetListener(ctx context.Context) (driver.Listener, error) {
	return nil, driver.ErrListenerNotSupported
}
func (d *stubDriver) GetNotifier() driver.Notifier { return nil }

var _ driver.Driver[struct{}] = (*stubDriver)(nil)

func waitUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func TestSyncFor_SurvivesRequestCompletion(t *testing.T) {
	store := &stubStore{}
	client, err := linkpg.NewClient[struct{}](&stubDriver{store: store}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	svc := New(client)
	defer svc.Close()

	// Touch the identity from a request whose context dies immediately,
	// the way net/http cancels r.Context() when the handler returns.
	reqCtx, finishRequest := context.WithCancel(context.Background())
	if _, err := svc.ListBookmarks(reqCtx, "alice"); err != nil {
		t.Fatalf("ListBookmarks() error = %v", err)
	}
	finishRequest()

	sync, err := svc.SyncFor("alice")
	if err != nil {
		t.Fatalf("SyncFor() error = %v", err)
	}
	waitUntil(t, func() bool { return sync.State() == linkpg.StateActive }, "activation")

	// The request is long gone; the shared synchronizer must still refetch.
	time.Sleep(20 * time.Millisecond)
	if got := sync.State(); got != linkpg.StateActive {
		t.Fatalf("State() = %v after request completion, want %v", got, linkpg.StateActive)
	}

	if _, err := store.CreateBookmark(context.Background(), "Go", "https://go.dev", "alice"); err != nil {
		t.Fatalf("CreateBookmark() error = %v", err)
	}
	sync.Invalidate()
	waitUntil(t, func() bool {
		list, err := svc.ListBookmarks(context.Background(), "alice")
		return err == nil && len(list) == 1
	}, "convergence after request completion")
}

func TestClose_TearsDownSynchronizers(t *testing.T) {
	store := &stubStore{}
	client, err := linkpg.NewClient[struct{}](&stubDriver{store: store}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	svc := New(client)
	sync, err := svc.SyncFor("alice")
	if err != nil {
		t.Fatalf("SyncFor() error = %v", err)
	}
	waitUntil(t, func() bool { return sync.State() == linkpg.StateActive }, "activation")

	svc.Close()
	if got := sync.State(); got != linkpg.StateTornDown {
		t.Errorf("State() after Close = %v, want %v", got, linkpg.StateTornDown)
	}
}

func TestCreateBookmark_BlankInputIsNoOp(t *testing.T) {
	svc := New[struct{}](nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		title string
		url   string
	}{
		{"blank title", "", "https://go.dev"},
		{"blank url", "Go", ""},
		{"whitespace title", "   ", "https://go.dev"},
		{"title sanitizes to empty", "<b></b>", "https://go.dev"},
		{"script title sanitizes to empty", "<script>alert(1)</script>", "https://go.dev"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.CreateBookmark(ctx, "user-1", tc.title, tc.url); err != nil {
				t.Errorf("CreateBookmark(%q, %q) error = %v, want nil no-op", tc.title, tc.url, err)
			}
		})
	}
}

func TestCreateBookmark_RejectsInvalidURL(t *testing.T) {
	svc := New[struct{}](nil)
	ctx := context.Background()

	cases := []struct {
		name string
		url  string
	}{
		{"no scheme", "go.dev"},
		{"ftp scheme", "ftp://go.dev"},
		{"javascript scheme", "javascript:alert(1)"},
		{"missing host", "https://"},
		{"garbage", "ht tp://broken"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.CreateBookmark(ctx, "user-1", "Title", tc.url)
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("CreateBookmark(%q) error = %v, want ErrInvalidURL", tc.url, err)
			}
		})
	}
}

func TestDeleteBookmark_RejectsInvalidID(t *testing.T) {
	svc := New[struct{}](nil)

	err := svc.DeleteBookmark(context.Background(), "user-1", "not-a-uuid")
	if !errors.Is(err, ErrInvalidID) {
		t.Errorf("DeleteBookmark() error = %v, want ErrInvalidID", err)
	}
}

func TestRelease_UnknownIdentityIsNoOp(t *testing.T) {
	svc := New[struct{}](nil)
	svc.Release("never-activated")
}
