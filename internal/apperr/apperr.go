// Package apperr defines the error taxonomy shared by the service and HTTP
// layers. Store adapters translate every driver failure into one of these
// kinds; raw driver errors never cross a package boundary.
package apperr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// FieldError reports a problem with a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field input errors so callers can render them
// individually.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Fields[0].Field, e.Fields[0].Message)
}

// NewValidation builds a ValidationError from field errors.
func NewValidation(fields ...FieldError) error {
	return &ValidationError{Fields: fields}
}

// AuthorizationError means the caller is authenticated but lacks privilege.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// NewAuthorization builds an AuthorizationError.
func NewAuthorization(msg string) error {
	return &AuthorizationError{Message: msg}
}

// NotFoundError means the target record does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NewNotFound builds a NotFoundError.
func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError means a state transition lost a race; the caller may retry
// after re-fetching current state.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflict builds a ConflictError.
func NewConflict(msg string) error {
	return &ConflictError{Message: msg}
}

// StorageError wraps an underlying store failure. The client-facing message
// carries only a correlation id; the cause stays in server logs.
type StorageError struct {
	Op            string
	CorrelationID string
	cause         error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s (ref %s)", e.Op, e.CorrelationID)
}

func (e *StorageError) Unwrap() error { return e.cause }

// NewStorage wraps cause with operation context and a fresh correlation id.
func NewStorage(op string, cause error) error {
	return &StorageError{Op: op, CorrelationID: uuid.NewString(), cause: cause}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsAuthorization reports whether err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var e *AuthorizationError
	return errors.As(err, &e)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}
