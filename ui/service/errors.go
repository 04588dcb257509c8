package service

import "errors"

// Service package errors.
var (
	// ErrInvalidURL indicates a bookmark URL that is not http(s).
	ErrInvalidURL = errors.New("service: invalid url")

	// ErrInvalidID indicates a malformed bookmark id.
	ErrInvalidID = errors.New("service: invalid id")
)
