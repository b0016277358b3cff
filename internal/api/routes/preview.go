package routes

import (
	"Monitor/internal/api/handlers/preview"
	"Monitor/internal/core/previews"

	"github.com/go-chi/chi/v5"
)

// RegisterPreviewRoutes registers the link preview endpoint
func RegisterPreviewRoutes(r chi.Router, service previews.Service) {
	h := preview.NewHandler(service)

	r.Get("/api/preview", h.HandleGetPreview)
}
