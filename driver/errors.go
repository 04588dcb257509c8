package driver

import "errors"

// Errors returned by driver implementations.
var (
	// ErrListenerClosed is returned when an operation is attempted on a closed listener.
	ErrListenerClosed = errors.New("listener is closed")

	// ErrListenerNotSupported is returned by drivers without LISTEN support.
	ErrListenerNotSupported = errors.New("driver does not support listeners")
)
