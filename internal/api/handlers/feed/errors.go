package feed

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"Monitor/internal/core/posts"
)

// ErrorResponse is the JSON body of a failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: errorType, Message: message}); err != nil {
		log.Printf("ERROR: Failed to encode error response: %v", err)
	}
}

// handleServiceError maps synchronizer errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, posts.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, "InvalidCategory", err.Error())
	default:
		log.Printf("ERROR: Feed error: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "An error occurred while loading the feed")
	}
}
