package preview

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"Monitor/internal/core/previews"
)

// ErrorResponse is the JSON body of a failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handler resolves link cards for entries that arrived without one
type Handler struct {
	service previews.Service
}

// NewHandler creates a new preview handler
func NewHandler(service previews.Service) *Handler {
	return &Handler{service: service}
}

// HandleGetPreview resolves the preview card of a link
// GET /api/preview?url=https://...
func (h *Handler) HandleGetPreview(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("url"))
	if target == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "url parameter is required")
		return
	}

	result, err := h.service.Resolve(r.Context(), target)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("ERROR: Failed to encode preview response: %v", err)
	}
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, previews.ErrUnsupportedURL):
		writeError(w, http.StatusBadRequest, "UnsupportedURL", "The link cannot be previewed")
	case errors.Is(err, previews.ErrProviderUnavailable):
		w.Header().Set("Retry-After", "300")
		writeError(w, http.StatusServiceUnavailable, "ProviderUnavailable", "Previews from this provider are temporarily disabled")
	default:
		log.Printf("Preview resolution failed: %v", err)
		writeError(w, http.StatusBadGateway, "PreviewFailed", "The link preview could not be fetched")
	}
}

func writeError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: errorType, Message: message}); err != nil {
		log.Printf("ERROR: Failed to encode error response: %v", err)
	}
}
