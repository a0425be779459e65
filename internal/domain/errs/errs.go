package errs

import (
	"errors"
	"fmt"
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Store errors
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Policy and upstream errors
var (
	ErrForbidden   = errors.New("forbidden")
	ErrUpstream    = errors.New("upstream failure")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ErrWrongScope is a valid token presented to the wrong operation.
// It matches ErrInvalidToken under errors.Is.
var ErrWrongScope = fmt.Errorf("%w: wrong scope", ErrInvalidToken)
