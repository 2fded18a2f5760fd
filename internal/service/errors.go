package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/launchpad/internal/domain"
)

// SettingsError wraps errors from the settings service with context.
type SettingsError struct {
	// Operation is the operation that failed (e.g., "load_game_config")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for SettingsError.
func (e *SettingsError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("settings %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("settings %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SettingsError) Unwrap() error {
	return e.Err
}

// NewSettingsError creates a new SettingsError.
// It returns known sentinel errors directly without wrapping.
func NewSettingsError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{domain.ErrGameNotFound, domain.ErrEmptyGameID, domain.ErrValidation} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	return &SettingsError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
