package domain

import "errors"

// Sentinel errors shared by services, repositories and the HTTP layer.
// Services wrap them with detail; callers match with errors.Is.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrConflict           = errors.New("conflict")
	ErrCapacityExceeded   = errors.New("event is full")
	ErrInvalidState       = errors.New("invalid state")
)
