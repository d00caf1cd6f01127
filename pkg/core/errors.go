package core

import "errors"

// Common errors.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("document not found")
	ErrDecode        = errors.New("failed to decode database")
	ErrDecrypt       = errors.New("failed to decrypt database")
	ErrIO            = errors.New("database i/o failure")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrReadOnly      = errors.New("database is in read-only mode")
)
