package auth

import "errors"

// Errors returned by the auth package.
var (
	// ErrInvalidConfig is returned when the manager configuration is invalid.
	ErrInvalidConfig = errors.New("auth: invalid configuration")

	// ErrSessionNotFound is returned when a session does not exist or has expired.
	ErrSessionNotFound = errors.New("auth: session not found")

	// ErrUnknownProvider is returned when a provider name is not registered.
	ErrUnknownProvider = errors.New("auth: unknown provider")

	// ErrStateMismatch is returned when a callback carries an unknown or
	// already-consumed state nonce.
	ErrStateMismatch = errors.New("auth: state mismatch")

	// ErrAuthFailed is returned when the provider rejects the code exchange
	// or the userinfo request fails. Callers should treat it as a return to
	// the signed-out state.
	ErrAuthFailed = errors.New("auth: authentication failed")

	// ErrInvalidToken is returned when a session token is malformed,
	// tampered with, or expired.
	ErrInvalidToken = errors.New("auth: invalid token")
)
