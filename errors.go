package linkpg

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig is returned when the client configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAlreadyStarted is returned when Start is called on a running client
	ErrAlreadyStarted = errors.New("client already started")

	// ErrNotStarted is returned when Stop is called on a client that hasn't started
	ErrNotStarted = errors.New("client not started")

	// ErrNotActive is returned when a write is issued through a synchronizer
	// that has no bound identity
	ErrNotActive = errors.New("synchronizer is not active")

	// ErrNoIdentity is returned when Activate is called with an empty identity
	ErrNoIdentity = errors.New("identity is required")
)

// FetchError wraps a failed list query. The previous cache is retained;
// a fetch failure never collapses the cache to an empty list.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// WriteError wraps a failed create or delete. The cache is untouched;
// successful writes surface through the change subscription instead.
type WriteError struct {
	Op  string // "create" or "delete"
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
