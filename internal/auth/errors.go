package auth

import "errors"

var (
	ErrMissingCredential = errors.New("api key required")
	// ErrInvalidCredential covers both unknown keys and failed lookups so
	// callers cannot probe which keys exist or whether storage is healthy.
	ErrInvalidCredential = errors.New("invalid api key")
)
