package curio

import "errors"

var (
	// ErrNotFound is returned when a slug or id lookup misses
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when no valid principal is present
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable is returned when a required capability (store or
	// object-store signer) is not configured
	ErrUnavailable = errors.New("capability not configured")
)
