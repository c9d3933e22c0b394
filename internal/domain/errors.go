package domain

import "errors"

// ErrMaxColumnsReached and related errors describe layout validation and runtime failures.
var (
	ErrMaxColumnsReached = errors.New("maximum column count reached")
	ErrMinColumnsReached = errors.New("minimum column count reached")
	ErrInvalidTarget     = errors.New("invalid drop target")
	ErrCorruptLayout     = errors.New("corrupt layout")
	ErrUnknownPanel      = errors.New("unknown panel")
	ErrDuplicatePanel    = errors.New("duplicate panel")
	ErrInvalidID         = errors.New("invalid id")
	ErrInvalidSize       = errors.New("invalid size")
)
