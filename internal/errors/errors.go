package errors

import (
	"errors"
)

// Sentinel errors for different categories
var (
	// ErrInvalidInput - malformed request or configuration value
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound - chat or agent id is not known to the store
	ErrNotFound = errors.New("not found")

	// ErrConflict - the requested change collides with current state (daemon already running)
	ErrConflict = errors.New("conflict")

	// ErrStopped - the store worker has shut down and no longer accepts requests
	ErrStopped = errors.New("stopped")

	// ErrInternal - unexpected failure inside a loop or handler
	ErrInternal = errors.New("internal error")
)
