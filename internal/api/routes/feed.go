package routes

import (
	"Monitor/internal/api/handlers/feed"

	"github.com/go-chi/chi/v5"
)

// RegisterFeedRoutes registers the category column endpoints
func RegisterFeedRoutes(r chi.Router, sync feed.Synchronizer) {
	h := feed.NewGetFeedHandler(sync)

	r.Get("/api/categories", h.HandleListCategories)
	r.Get("/api/feed/{category}", h.HandleGetFeed)
	r.Post("/api/feed/{category}/more", h.HandleLoadMore)
}
