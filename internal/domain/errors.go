package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness violation.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnauthorized indicates there is no valid session for the call.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable marks transient network or server failures.
	ErrUnavailable = errors.New("unavailable")
	// ErrInvalidInput marks requests rejected for bad input.
	ErrInvalidInput = errors.New("invalid input")
)
