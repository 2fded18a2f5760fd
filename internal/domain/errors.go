package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain value fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrCancelled is the typed form of cooperative cancellation. Host adapters
	// wrap it when the host reports that an operation was aborted on request.
	ErrCancelled = errors.New("operation cancelled")

	// ErrGameNotFound is returned when no saved configuration exists for a game.
	ErrGameNotFound = errors.New("game not found")

	// ErrEmptyGameID is returned when a game identifier is required but empty.
	ErrEmptyGameID = errors.New("game ID cannot be empty")
)
