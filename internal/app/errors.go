package app

import "errors"

// ErrNotFound and related errors describe persistence failures.
var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidSlot = errors.New("invalid layout slot")
	ErrClosed      = errors.New("manager closed")
)
