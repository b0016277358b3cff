package layout

import (
	"context"
	"errors"
	"time"

	"Monitor/internal/core/posts"
)

// ColumnOrderKey is the preference key the column order is stored under
const ColumnOrderKey = "column-order"

// Preference is a stored dashboard preference of one client
type Preference struct {
	UpdatedAt time.Time
	ClientID  string
	Key       string
	Value     []string
}

// Repository defines preference data access interface
type Repository interface {
	Get(ctx context.Context, clientID, key string) (*Preference, error)
	Upsert(ctx context.Context, pref *Preference) error
	Delete(ctx context.Context, clientID, key string) error
}

// Service defines column-order business logic interface
type Service interface {
	GetColumnOrder(ctx context.Context, clientID string) ([]posts.Category, error)
	SaveColumnOrder(ctx context.Context, clientID string, order []string) ([]posts.Category, error)
	ResetColumnOrder(ctx context.Context, clientID string) ([]posts.Category, error)
}

// Errors
var (
	ErrNotFound           = errors.New("preference not found")
	ErrInvalidColumnOrder = errors.New("invalid column order")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
