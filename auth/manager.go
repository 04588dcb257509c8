package auth

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default lifetimes.
const (
	DefaultSessionTTL = 24 * time.Hour
	DefaultStateTTL   = 10 * time.Minute
)

// ManagerConfig holds configuration for the Manager.
type ManagerConfig struct {
	// Providers are the identity providers available for sign-in (required).
	Providers []Provider

	// Store persists sessions and state nonces (required).
	Store SessionStore

	// Tokens issues and validates session tokens (required).
	Tokens *TokenProvider

	// SessionTTL is how long a session lives without a refresh (optional).
	// Default: 24 hours.
	SessionTTL time.Duration

	// StateTTL is how long a sign-in redirect may take before its state
	// nonce expires (optional). Default: 10 minutes.
	StateTTL time.Duration
}

// Validate validates the configuration.
func (c *ManagerConfig) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("%w: at least one provider is required", ErrInvalidConfig)
	}
	if c.Store == nil {
		return fmt.Errorf("%w: session store is required", ErrInvalidConfig)
	}
	if c.Tokens == nil {
		return fmt.Errorf("%w: token provider is required", ErrInvalidConfig)
	}
	return nil
}

// Manager tracks the current authentication identity and propagates
// transitions to dependents.
//
// Sign-in does not return a session synchronously: SignInURL starts a
// redirect, and the session materializes in HandleCallback, observed
// through OnAuthStateChange. An explicit CurrentSession query is still
// required at startup; registering a listener does not fire eagerly.
type Manager struct {
	providers map[string]Provider
	store     SessionStore
	tokens    *TokenProvider
	ttl       time.Duration
	stateTTL  time.Duration

	mu        sync.Mutex
	current   *Session
	listeners map[int64]func(EventType, *Session)
	nextID    int64
}

// NewManager creates a session manager with the given configuration.
func NewManager(config *ManagerConfig) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	ttl := config.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	stateTTL := config.StateTTL
	if stateTTL <= 0 {
		stateTTL = DefaultStateTTL
	}

	providers := make(map[string]Provider, len(config.Providers))
	for _, p := range config.Providers {
		providers[p.Name()] = p
	}

	return &Manager{
		providers: providers,
		store:     config.Store,
		tokens:    config.Tokens,
		ttl:       ttl,
		stateTTL:  stateTTL,
		listeners: make(map[int64]func(EventType, *Session)),
	}, nil
}

// CurrentSession returns the current session, or nil when signed out.
// Absence of a session is a normal result, not a failure. An expired
// session reverts to signed-out and notifies listeners.
func (m *Manager) CurrentSession(ctx context.Context) *Session {
	m.mu.Lock()
	current := m.current
	m.mu.Unlock()

	if current == nil {
		return nil
	}
	if current.Expired() {
		_ = m.SignOut(ctx)
		return nil
	}
	dup := *current
	return &dup
}

// OnAuthStateChange registers a listener invoked on sign-in, sign-out,
// and token refresh. The session argument is nil on sign-out. Returns an
// unsubscribe function. The listener is not invoked eagerly; query
// CurrentSession for the initial state.
func (m *Manager) OnAuthStateChange(cb func(event EventType, session *Session)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = cb

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Providers returns the names of the configured providers, sorted.
func (m *Manager) Providers() []string {
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SignInURL starts the redirect-based handshake with the named provider
// and returns the URL to send the user to. Completion is observed via
// OnAuthStateChange after HandleCallback, never synchronously.
func (m *Manager) SignInURL(ctx context.Context, provider string) (string, error) {
	p, ok := m.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	state := uuid.New().String()
	if err := m.store.SaveState(ctx, state, provider, m.stateTTL); err != nil {
		return "", err
	}
	return p.AuthCodeURL(state), nil
}

// HandleCallback completes the handshake: it consumes the state nonce,
// exchanges the code, persists a new session, and notifies listeners.
// On any failure the manager stays (or becomes) signed out.
func (m *Manager) HandleCallback(ctx context.Context, state, code string) (*Session, error) {
	providerName, err := m.store.TakeState(ctx, state)
	if err != nil {
		return nil, err
	}
	p, ok := m.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, providerName)
	}

	identity, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.New().String(),
		UserID:    identity.UserID,
		Email:     identity.Email,
		Provider:  providerName,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	token, _, err := m.tokens.Issue(session.ID, session.UserID, session.Email, session.Provider)
	if err != nil {
		return nil, err
	}
	session.Token = token

	if err := m.store.SaveSession(ctx, session, m.ttl); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	m.notify(EventSignedIn, session)

	dup := *session
	return &dup, nil
}

// SessionFromToken resolves a transported session token (e.g. from a
// cookie) to its live session. Returns ErrInvalidToken or
// ErrSessionNotFound when the token no longer maps to a session.
func (m *Manager) SessionFromToken(ctx context.Context, token string) (*Session, error) {
	claims, err := m.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	session, err := m.store.GetSession(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if session.Expired() {
		_ = m.store.DeleteSession(ctx, session.ID)
		return nil, ErrSessionNotFound
	}
	session.Token = token
	return session, nil
}

// Refresh re-mints the current session's token, extends its expiry, and
// notifies listeners with the token-refreshed event.
func (m *Manager) Refresh(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	current := m.current
	m.mu.Unlock()

	if current == nil {
		return nil, ErrSessionNotFound
	}

	token, expiresAt, err := m.tokens.Issue(current.ID, current.UserID, current.Email, current.Provider)
	if err != nil {
		return nil, err
	}

	refreshed := *current
	refreshed.Token = token
	refreshed.ExpiresAt = expiresAt

	if err := m.store.SaveSession(ctx, &refreshed, m.ttl); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.current = &refreshed
	m.mu.Unlock()

	m.notify(EventTokenRefreshed, &refreshed)

	dup := refreshed
	return &dup, nil
}

// SignOut invalidates the current session and notifies listeners with a
// nil session. Signing out while already signed out is a no-op.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	current := m.current
	m.current = nil
	m.mu.Unlock()

	if current == nil {
		return nil
	}
	if err := m.store.DeleteSession(ctx, current.ID); err != nil {
		return err
	}

	m.notify(EventSignedOut, nil)
	return nil
}

// SignOutSession invalidates a specific session by ID (e.g. the session
// carried by a request cookie) and notifies listeners.
func (m *Manager) SignOutSession(ctx context.Context, sessionID string) error {
	if err := m.store.DeleteSession(ctx, sessionID); err != nil {
		return err
	}

	m.mu.Lock()
	if m.current != nil && m.current.ID == sessionID {
		m.current = nil
	}
	m.mu.Unlock()

	m.notify(EventSignedOut, nil)
	return nil
}

// notify fans an event out to all listeners. Listeners run outside the
// manager lock.
func (m *Manager) notify(event EventType, session *Session) {
	m.mu.Lock()
	listeners := make([]func(EventType, *Session), 0, len(m.listeners))
	for _, cb := range m.listeners {
		listeners = append(listeners, cb)
	}
	m.mu.Unlock()

	for _, cb := range listeners {
		cb(event, session)
	}
}
