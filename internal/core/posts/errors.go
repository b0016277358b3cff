package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for post normalization and classification
var (
	// ErrInvalidPost is returned when a post lacks its mandatory id or content
	ErrInvalidPost = errors.New("invalid post")

	// ErrUnknownCategory is returned when a category key is not one of the fixed display buckets
	ErrUnknownCategory = errors.New("unknown category")

	// ErrInvalidEventStatus is returned for event statuses other than open, archived or dismissed
	ErrInvalidEventStatus = errors.New("invalid event status")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidPost for any post field violation
func (e *ValidationError) Unwrap() error {
	return ErrInvalidPost
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
