package auth

import (
	"context"
	"sync"
	"time"
)

// SessionStore persists live sessions and short-lived OAuth state nonces.
type SessionStore interface {
	// SaveSession stores a session with the given time-to-live.
	SaveSession(ctx context.Context, session *Session, ttl time.Duration) error

	// GetSession retrieves a session by ID.
	// Returns ErrSessionNotFound for unknown or expired sessions.
	GetSession(ctx context.Context, id string) (*Session, error)

	// DeleteSession removes a session. Deleting a missing session is not an error.
	DeleteSession(ctx context.Context, id string) error

	// SaveState stores a one-shot CSRF state nonce bound to a provider name.
	SaveState(ctx context.Context, state, provider string, ttl time.Duration) error

	// TakeState consumes a state nonce and returns its provider name.
	// A nonce can be taken at most once; unknown or expired nonces return
	// ErrStateMismatch.
	TakeState(ctx context.Context, state string) (string, error)
}

// MemoryStore is an in-process SessionStore, suitable for tests and
// single-instance deployments.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry[*Session]
	states   map[string]memoryEntry[string]
}

type memoryEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e memoryEntry[T]) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry[*Session]),
		states:   make(map[string]memoryEntry[string]),
	}
}

// SaveSession stores a session with the given time-to-live.
func (m *MemoryStore) SaveSession(ctx context.Context, session *Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dup := *session
	m.sessions[session.ID] = memoryEntry[*Session]{value: &dup, expiresAt: time.Now().Add(ttl)}
	return nil
}

// GetSession retrieves a session by ID.
func (m *MemoryStore) GetSession(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[id]
	if !ok || entry.expired() {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	dup := *entry.value
	return &dup, nil
}

// DeleteSession removes a session.
func (m *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// SaveState stores a one-shot CSRF state nonce.
func (m *MemoryStore) SaveState(ctx context.Context, state, provider string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state] = memoryEntry[string]{value: provider, expiresAt: time.Now().Add(ttl)}
	return nil
}

// TakeState consumes a state nonce and returns its provider name.
func (m *MemoryStore) TakeState(ctx context.Context, state string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.states[state]
	delete(m.states, state)
	if !ok || entry.expired() {
		return "", ErrStateMismatch
	}
	return entry.value, nil
}

// Compile-time check
var _ SessionStore = (*MemoryStore)(nil)
