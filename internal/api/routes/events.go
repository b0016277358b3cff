package routes

import (
	"Monitor/internal/api/handlers/events"

	"github.com/go-chi/chi/v5"
)

// RegisterEventRoutes registers the events panel and moderation endpoints
func RegisterEventRoutes(r chi.Router, backend events.Backend, store events.Store) {
	h := events.NewHandler(backend, store)

	r.Get("/api/events", h.HandleListEvents)
	// Registered before {uuid} so "cluster" is not taken for an id
	r.Post("/api/events/cluster", h.HandleCluster)
	r.Get("/api/events/{uuid}", h.HandleGetEvent)
	r.Put("/api/events/{uuid}/status", h.HandleUpdateStatus)
}
