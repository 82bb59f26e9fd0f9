package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrSeatUnavailable  = errors.New("seat unavailable")
	ErrAlreadyResponded = errors.New("invitation already responded to")
	ErrDuplicateEmail   = errors.New("email already in use")
	ErrBadCredentials   = errors.New("invalid email or password")
)
