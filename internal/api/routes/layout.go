package routes

import (
	"Monitor/internal/api/handlers/layout"
	"Monitor/internal/api/middleware"
	layoutCore "Monitor/internal/core/layout"

	"github.com/go-chi/chi/v5"
)

// RegisterLayoutRoutes registers the column-order endpoints. Requests are
// identified by the client session cookie.
func RegisterLayoutRoutes(r chi.Router, service layoutCore.Service, session *middleware.ClientSession) {
	h := layout.NewHandler(service)

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware)
		r.Get("/api/layout", h.HandleGetColumnOrder)
		r.Put("/api/layout", h.HandleSaveColumnOrder)
		r.Delete("/api/layout", h.HandleResetColumnOrder)
	})
}
