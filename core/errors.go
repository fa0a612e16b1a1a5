package core

import "errors"

var (
	// ErrInvalidInput covers bad name shapes, empty or oversized uploads and
	// disallowed file extensions.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotAuthorized is a wrong or missing room password. It is kept distinct from
	// ErrInvalidInput so clients can re-prompt for the password.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrConflict is a duplicate user name.
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)
