package application

import (
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError indicates a referenced record does not exist.
type NotFoundError struct {
	Kind string // "application", "job", "user", "interview"
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ValidationError indicates required input is missing or malformed.
type ValidationError struct {
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// ConflictError indicates the operation collides with existing state, such
// as applying twice to the same job.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
