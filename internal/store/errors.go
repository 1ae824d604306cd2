package store

import "errors"

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidTransition is returned when an item is not in the status a
	// lifecycle operation starts from.
	ErrInvalidTransition = errors.New("operation not allowed in current status")

	// ErrInvalidQuantity is returned for quantities outside the accepted range.
	ErrInvalidQuantity = errors.New("invalid quantity")
)
