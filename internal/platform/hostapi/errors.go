package hostapi

import (
	"fmt"

	"github.com/phrazzld/launchpad/internal/domain"
)

// CodeCancelled is the error code the host reports for an aborted operation.
const CodeCancelled = "cancelled"

// Error describes a failed host call.
type Error struct {
	// Operation is the host call that failed (e.g., "verify")
	Operation string
	// Status is the HTTP status, 0 when no response arrived
	Status int
	// Code is the host's machine-readable error code, if any
	Code string
	// Message is the host's human-readable error text
	Message string
	// Err is the underlying transport or decoding error
	Err error
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Code != "":
		return fmt.Sprintf("host %s failed (status %d, %s): %s", e.Operation, e.Status, e.Code, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("host %s failed (status %d): %s", e.Operation, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("host %s failed: %v", e.Operation, e.Err)
	default:
		return fmt.Sprintf("host %s failed", e.Operation)
	}
}

// Unwrap exposes domain.ErrCancelled for aborted operations, and the
// transport error otherwise.
func (e *Error) Unwrap() error {
	if e.Code == CodeCancelled {
		return domain.ErrCancelled
	}
	return e.Err
}

// hostErrorBody is the JSON body of a non-2xx host response.
type hostErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
