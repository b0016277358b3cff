package monitorapi

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the upstream API answers 404
	ErrNotFound = errors.New("not found")

	// ErrMissingBaseURL is returned by Config.Validate when BaseURL is empty
	ErrMissingBaseURL = errors.New("monitor API base URL is required")
)

// APIError is a non-2xx response from the monitor API
type APIError struct {
	Method     string
	Path       string
	Body       string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("monitor API %s %s returned %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("monitor API %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Unwrap maps 404 responses to ErrNotFound
func (e *APIError) Unwrap() error {
	if e.StatusCode == 404 {
		return ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the monitor API
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
