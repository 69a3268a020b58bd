package domain

import "errors"

// Error taxonomy surfaced by use cases. Handlers map these onto HTTP statuses.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation failed")
)
