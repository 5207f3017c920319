package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is the base error for all entity validation failures.
	// Entity-specific validation errors wrap it so callers can match the
	// whole family with errors.Is(err, domain.ErrValidation).
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")
)
