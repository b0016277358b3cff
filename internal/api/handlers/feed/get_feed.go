package feed

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"Monitor/internal/core/feeds"
	"Monitor/internal/core/posts"

	"github.com/go-chi/chi/v5"
)

// Synchronizer is the feed surface the handlers read and page through
type Synchronizer interface {
	Snapshot() *feeds.State
	LoadMore(ctx context.Context, category posts.Category) error
}

// EntryView is an entry as rendered, with its resolved accent
type EntryView struct {
	posts.Entry
	Accent string `json:"accent"`
}

// FeedResponse is one category column
type FeedResponse struct {
	Cursor    *time.Time     `json:"cursor"`
	Category  posts.Category `json:"category"`
	Label     string         `json:"label"`
	Accent    string         `json:"accent"`
	Entries   []EntryView    `json:"entries"`
	HasMore   bool           `json:"hasMore"`
	IsLoading bool           `json:"isLoading"`
}

// GetFeedHandler serves category columns
type GetFeedHandler struct {
	sync Synchronizer
}

// NewGetFeedHandler creates a new feed handler
func NewGetFeedHandler(sync Synchronizer) *GetFeedHandler {
	return &GetFeedHandler{sync: sync}
}

// HandleGetFeed returns one category's entries, newest first
// GET /api/feed/{category}?filter=...
func (h *GetFeedHandler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	category, err := posts.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeFeed(w, buildResponse(h.sync.Snapshot(), category, r.URL.Query().Get("filter")))
}

// HandleLoadMore fetches the category's next page, then returns the column
// POST /api/feed/{category}/more?filter=...
func (h *GetFeedHandler) HandleLoadMore(w http.ResponseWriter, r *http.Request) {
	category, err := posts.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.sync.LoadMore(r.Context(), category); err != nil {
		handleServiceError(w, err)
		return
	}

	writeFeed(w, buildResponse(h.sync.Snapshot(), category, r.URL.Query().Get("filter")))
}

// HandleListCategories returns the category metadata in default order
// GET /api/categories
func (h *GetFeedHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"categories": posts.Categories(),
	}); err != nil {
		log.Printf("ERROR: Failed to encode categories response: %v", err)
	}
}

func buildResponse(state *feeds.State, category posts.Category, filter string) FeedResponse {
	info := category.Info()
	cs := state.Category(category)

	entries := feeds.View(state, category, filter)
	views := make([]EntryView, len(entries))
	for i := range entries {
		views[i] = EntryView{Entry: entries[i], Accent: entries[i].Accent()}
	}

	return FeedResponse{
		Category:  category,
		Label:     info.Label,
		Accent:    info.Accent,
		Entries:   views,
		Cursor:    cs.Cursor,
		HasMore:   cs.HasMore,
		IsLoading: cs.IsLoading,
	}
}

func writeFeed(w http.ResponseWriter, resp FeedResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("ERROR: Failed to encode feed response: %v", err)
	}
}
