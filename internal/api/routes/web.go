package routes

import (
	"Monitor/internal/api/middleware"
	"Monitor/internal/core/layout"
	"Monitor/internal/web"

	"github.com/go-chi/chi/v5"
)

// RegisterWebRoutes registers the dashboard page
func RegisterWebRoutes(r chi.Router, feed web.FeedSource, layouts layout.Service, session *middleware.ClientSession) {
	templates, err := web.NewTemplates()
	if err != nil {
		panic("failed to load web templates: " + err.Error())
	}

	handlers := web.NewHandlers(templates, feed, layouts)

	r.With(session.Middleware).Get("/", handlers.DashboardHandler)
	r.Post("/more/{category}", handlers.LoadMoreHandler)
}
