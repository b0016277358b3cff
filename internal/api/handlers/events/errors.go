package events

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"Monitor/internal/core/posts"
	"Monitor/internal/monitorapi"
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

// handleServiceError maps backend errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *monitorapi.APIError
	switch {
	case errors.Is(err, posts.ErrInvalidEventStatus):
		writeError(w, http.StatusBadRequest, "InvalidStatus", err.Error())
	case monitorapi.IsNotFound(err):
		writeError(w, http.StatusNotFound, "EventNotFound", "Event not found")
	case errors.As(err, &apiErr):
		log.Printf("ERROR: Monitor API error: %v", err)
		writeError(w, http.StatusBadGateway, "UpstreamError", "The monitor backend rejected the request")
	default:
		log.Printf("ERROR: Events error: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "An error occurred while handling events")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: Failed to encode events response: %v", err)
	}
}
