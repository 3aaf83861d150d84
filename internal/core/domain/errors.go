package domain

import "errors"

var (
	ErrMissingToken       = errors.New("missing token")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrInvalidRole        = errors.New("invalid role")
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrUserNotFound       = errors.New("user not found")
	// ErrIdempotencyKeyReused means an Idempotency-Key was presented with a
	// registration payload other than the one it was first used for.
	ErrIdempotencyKeyReused = errors.New("idempotency key reused")
)
