package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by every "entity does not exist" error.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference marks writes pointing at ids that do not exist,
	// e.g. a membership naming an unknown product.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
