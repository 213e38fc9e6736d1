package store

import (
	"errors"
	"fmt"
)

// ErrNotFound covers both genuinely absent rows and rows the caller is not
// allowed to see. The two cases are deliberately indistinguishable so that
// hidden or deleted content does not reveal its existence.
var ErrNotFound = errors.New("resource not found")

// ErrForbidden is returned when an authenticated caller attempts an
// owner-restricted mutation on a resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ValidationError reports a malformed or missing input field. No state is
// changed when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a field-level validation failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
