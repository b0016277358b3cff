package web

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"Monitor/internal/api/middleware"
	"Monitor/internal/core/feeds"
	"Monitor/internal/core/layout"
	"Monitor/internal/core/posts"

	"github.com/go-chi/chi/v5"
)

// FeedSource is the synchronizer surface the dashboard reads
type FeedSource interface {
	Snapshot() *feeds.State
	Status() feeds.Status
	LoadMore(ctx context.Context, category posts.Category) error
}

// Handlers provides HTTP handlers for the dashboard page.
type Handlers struct {
	templates *Templates
	feed      FeedSource
	layouts   layout.Service
}

// NewHandlers creates a new Handlers instance with the provided dependencies.
func NewHandlers(templates *Templates, feed FeedSource, layouts layout.Service) *Handlers {
	return &Handlers{
		templates: templates,
		feed:      feed,
		layouts:   layouts,
	}
}

// DashboardData holds data for the dashboard template.
type DashboardData struct {
	Title     string
	State     string
	Filter    string
	Warning   string
	LoadError string
	Columns   []Column
	Events    []EventRow
	Connected bool
}

// Column is one category column
type Column struct {
	Category posts.Category
	Label    string
	Accent   string
	Entries  []EntryRow
	HasMore  bool
	Muted    bool
}

// EntryRow is one rendered entry
type EntryRow struct {
	PostedAt    time.Time
	LinkPreview *posts.LinkPreview
	ID          string
	Text        string
	Source      string
	WebURL      string
	Accent      string
	Media       []string
}

// EventRow is one rendered event
type EventRow struct {
	UUID             string
	Title            string
	Summary          string
	Status           posts.EventStatus
	PostsCount       int
	AverageRelevance float64
}

// DashboardHandler handles GET / and renders every column in the client's
// saved order. ?filter= narrows entries and events by text; ?muted= is a
// comma-separated list of categories rendered collapsed.
func (h *Handlers) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	filter := r.URL.Query().Get("filter")
	data := BuildDashboard(h.feed.Snapshot(), h.feed.Status(), h.columnOrder(r), filter, parseMuted(r.URL.Query().Get("muted")))

	if err := h.templates.Render(w, "dashboard.html", data); err != nil {
		log.Printf("Failed to render dashboard: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// LoadMoreHandler handles POST /more/{category}: fetches the next page and
// sends the browser back to the dashboard, keeping its query string.
func (h *Handlers) LoadMoreHandler(w http.ResponseWriter, r *http.Request) {
	category, err := posts.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		http.Error(w, "Unknown category", http.StatusBadRequest)
		return
	}

	if err := h.feed.LoadMore(r.Context(), category); err != nil {
		log.Printf("Failed to load more %s: %v", category, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	target := "/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// columnOrder returns the client's saved order, or the default one
func (h *Handlers) columnOrder(r *http.Request) []posts.Category {
	clientID := middleware.GetClientID(r)
	if clientID == "" || h.layouts == nil {
		return layout.DefaultColumnOrder()
	}

	order, err := h.layouts.GetColumnOrder(r.Context(), clientID)
	if err != nil {
		slog.Warn("[WEB] failed to load column order, using default", "client_id", clientID, "error", err)
		return layout.DefaultColumnOrder()
	}
	return order
}

// BuildDashboard derives the page data from a synchronizer snapshot
func BuildDashboard(state *feeds.State, status feeds.Status, order []posts.Category, filter string, muted map[posts.Category]bool) DashboardData {
	data := DashboardData{
		Title:     "Monitor",
		State:     status.State,
		Connected: status.Connected,
		Warning:   status.Warning,
		LoadError: status.LoadError,
		Filter:    strings.TrimSpace(filter),
		Columns:   make([]Column, 0, len(order)),
	}

	for _, category := range order {
		info := category.Info()
		col := Column{
			Category: category,
			Label:    info.Label,
			Accent:   info.Accent,
			HasMore:  state.Category(category).HasMore,
			Muted:    muted[category],
		}
		entries := feeds.View(state, category, filter)
		col.Entries = make([]EntryRow, len(entries))
		for i := range entries {
			e := &entries[i]
			col.Entries[i] = EntryRow{
				ID:          e.ID,
				Text:        e.Text,
				Source:      e.Source,
				WebURL:      e.WebURL,
				Accent:      e.Accent(),
				PostedAt:    e.PostedAt,
				LinkPreview: e.LinkPreview,
				Media:       e.Media,
			}
		}
		data.Columns = append(data.Columns, col)
	}

	events := feeds.FilterEvents(state.Events(), filter)
	data.Events = make([]EventRow, len(events))
	for i := range events {
		e := &events[i]
		data.Events[i] = EventRow{
			UUID:             e.UUID,
			Title:            e.Title,
			Summary:          e.Summary,
			Status:           e.Status,
			PostsCount:       e.PostsCount,
			AverageRelevance: e.AverageRelevance(),
		}
	}
	return data
}

func parseMuted(raw string) map[posts.Category]bool {
	muted := make(map[posts.Category]bool)
	for _, key := range strings.Split(raw, ",") {
		if c, err := posts.ParseCategory(key); err == nil {
			muted[c] = true
		}
	}
	return muted
}
