package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_SessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess := &Session{
		ID:       "sess-1",
		UserID:   "user-1",
		Email:    "user@example.com",
		Provider: "google",
	}
	if err := store.SaveSession(ctx, sess, time.Hour); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	got, err := store.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.UserID != "user-1" || got.Email != "user@example.com" {
		t.Errorf("GetSession() = %+v, want saved session", got)
	}

	// The store hands back copies, not the stored value.
	got.Email = "mutated@example.com"
	again, err := store.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if again.Email != "user@example.com" {
		t.Errorf("stored session mutated through returned copy: %q", again.Email)
	}
}

func TestMemoryStore_SessionNotFound(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.GetSession(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetSession() error = %v, want ErrSessionNotFound", err)
	}
}

func TestMemoryStore_SessionExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess := &Session{ID: "sess-1", UserID: "user-1"}
	if err := store.SaveSession(ctx, sess, 20*time.Millisecond); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	if _, err := store.GetSession(ctx, "sess-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetSession() error = %v, want ErrSessionNotFound after expiry", err)
	}
}

func TestMemoryStore_DeleteSessionIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.SaveSession(ctx, &Session{ID: "sess-1"}, time.Hour); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if err := store.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if err := store.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession() second call error = %v", err)
	}
	if _, err := store.GetSession(ctx, "sess-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetSession() error = %v, want ErrSessionNotFound after delete", err)
	}
}

func TestMemoryStore_TakeStateSingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.SaveState(ctx, "nonce-1", "google", time.Minute); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	provider, err := store.TakeState(ctx, "nonce-1")
	if err != nil {
		t.Fatalf("TakeState() error = %v", err)
	}
	if provider != "google" {
		t.Errorf("TakeState() = %q, want google", provider)
	}

	if _, err := store.TakeState(ctx, "nonce-1"); !errors.Is(err, ErrStateMismatch) {
		t.Errorf("TakeState() replay error = %v, want ErrStateMismatch", err)
	}
}

func TestMemoryStore_TakeStateUnknown(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.TakeState(context.Background(), "never-saved"); !errors.Is(err, ErrStateMismatch) {
		t.Errorf("TakeState() error = %v, want ErrStateMismatch", err)
	}
}

func TestMemoryStore_TakeStateExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.SaveState(ctx, "nonce-1", "google", 20*time.Millisecond); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	if _, err := store.TakeState(ctx, "nonce-1"); !errors.Is(err, ErrStateMismatch) {
		t.Errorf("TakeState() error = %v, want ErrStateMismatch after expiry", err)
	}
}
