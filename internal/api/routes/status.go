package routes

import (
	"Monitor/internal/api/handlers/status"

	"github.com/go-chi/chi/v5"
)

// RegisterStatusRoutes registers the connection status endpoints
func RegisterStatusRoutes(r chi.Router, reporter status.Reporter, upstream status.UpstreamChecker) {
	h := status.NewHandler(reporter, upstream)

	r.Get("/api/status", h.HandleGetStatus)
	r.Delete("/api/status/warning", h.HandleDismissWarning)
	r.Get("/api/status/upstream", h.HandleUpstreamHealth)
}
