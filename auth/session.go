package auth

import "time"

// Session is the live binding between a client and an authenticated
// identity.
type Session struct {
	// ID is the session identifier (also the token's jti claim).
	ID string `json:"id"`

	// UserID is the stable unique identifier of the user at the provider.
	// Bookmarks are owned by this value.
	UserID string `json:"user_id"`

	// Email is the user's email address, if the provider supplied one.
	Email string `json:"email,omitempty"`

	// Provider is the name of the identity provider that issued this session.
	Provider string `json:"provider"`

	// Token is the signed session token for transport (e.g. a cookie).
	Token string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired returns true if the session is past its expiry.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// EventType identifies an auth state transition.
type EventType string

// Auth state transitions reported to change listeners.
const (
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventTokenRefreshed EventType = "token_refreshed"
)
