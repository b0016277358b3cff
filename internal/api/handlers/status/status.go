package status

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"Monitor/internal/core/feeds"
	"Monitor/internal/monitorapi"
)

// Reporter exposes the synchronizer status
type Reporter interface {
	Status() feeds.Status
	DismissWarning()
}

// UpstreamChecker reports the backend's push-stream health
type UpstreamChecker interface {
	NotificationHealth(ctx context.Context) (*monitorapi.Health, error)
}

// ErrorResponse is the JSON body of a failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handler serves connection and pagination status
type Handler struct {
	reporter Reporter
	upstream UpstreamChecker
}

// NewHandler creates a new status handler. upstream may be nil.
func NewHandler(reporter Reporter, upstream UpstreamChecker) *Handler {
	return &Handler{reporter: reporter, upstream: upstream}
}

// HandleGetStatus returns the stream state, warning and per-category cursors
// GET /api/status
func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reporter.Status())
}

// HandleDismissWarning clears the live-updates warning
// DELETE /api/status/warning
func (h *Handler) HandleDismissWarning(w http.ResponseWriter, r *http.Request) {
	h.reporter.DismissWarning()
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpstreamHealth proxies the backend notification health check
// GET /api/status/upstream
func (h *Handler) HandleUpstreamHealth(w http.ResponseWriter, r *http.Request) {
	if h.upstream == nil {
		writeError(w, http.StatusServiceUnavailable, "UpstreamUnavailable", "No monitor backend configured")
		return
	}

	health, err := h.upstream.NotificationHealth(r.Context())
	if err != nil {
		log.Printf("ERROR: Upstream health check failed: %v", err)
		writeError(w, http.StatusBadGateway, "UpstreamUnavailable", "The monitor backend is unreachable")
		return
	}

	status := http.StatusOK
	if !health.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

func writeError(w http.ResponseWriter, status int, errorType, message string) {
	writeJSON(w, status, ErrorResponse{Error: errorType, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: Failed to encode status response: %v", err)
	}
}
