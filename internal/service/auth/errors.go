package auth

import "errors"

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrUsernameTaken    = errors.New("username already exists")
	// ErrInvalidCredentials covers both unknown users and wrong
	// passwords so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)
