package ui

import "errors"

// ErrInvalidConfig indicates invalid configuration.
var ErrInvalidConfig = errors.New("ui: invalid configuration")
