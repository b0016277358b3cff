package events

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"Monitor/internal/core/feeds"
	"Monitor/internal/core/posts"

	"github.com/go-chi/chi/v5"
)

// maxClusterPosts bounds a single cluster request
const maxClusterPosts = 500

// Backend is the monitor API surface used for event moderation
type Backend interface {
	GetEvent(ctx context.Context, uuid string) (*posts.Event, error)
	UpdateEventStatus(ctx context.Context, uuid string, status posts.EventStatus) (*posts.Event, error)
	ProcessCluster(ctx context.Context, postIDs []string) (json.RawMessage, error)
}

// Store holds the synchronized event list
type Store interface {
	Snapshot() *feeds.State
	UpsertEvent(event posts.Event)
}

// EventView is an event as listed, with its computed relevance
type EventView struct {
	posts.Event
	AverageRelevance float64 `json:"averageRelevance"`
}

// ListEventsResponse is the events panel
type ListEventsResponse struct {
	Events []EventView `json:"events"`
}

// UpdateStatusRequest is the body of a status change
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ClusterRequest is the body of a manual clustering run
type ClusterRequest struct {
	Posts []string `json:"posts"`
}

// Handler serves the events panel and its moderation actions
type Handler struct {
	backend Backend
	store   Store
}

// NewHandler creates a new events handler
func NewHandler(backend Backend, store Store) *Handler {
	return &Handler{backend: backend, store: store}
}

// HandleListEvents returns the synchronized events, newest first
// GET /api/events?filter=...
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	events := feeds.FilterEvents(h.store.Snapshot().Events(), r.URL.Query().Get("filter"))

	views := make([]EventView, len(events))
	for i := range events {
		views[i] = EventView{Event: events[i], AverageRelevance: events[i].AverageRelevance()}
	}
	writeJSON(w, http.StatusOK, ListEventsResponse{Events: views})
}

// HandleGetEvent fetches one event from the backend
// GET /api/events/{uuid}
func (h *Handler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	if strings.TrimSpace(uuid) == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "uuid is required")
		return
	}

	event, err := h.backend.GetEvent(r.Context(), uuid)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EventView{Event: *event, AverageRelevance: event.AverageRelevance()})
}

// HandleUpdateStatus changes an event's status and folds the result into
// the synchronized list
// PUT /api/events/{uuid}/status
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	if strings.TrimSpace(uuid) == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "uuid is required")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	status := posts.EventStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "InvalidStatus", "status must be one of open, archived, dismissed")
		return
	}

	event, err := h.backend.UpdateEventStatus(r.Context(), uuid, status)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.store.UpsertEvent(*event)
	writeJSON(w, http.StatusOK, EventView{Event: *event, AverageRelevance: event.AverageRelevance()})
}

// HandleCluster asks the backend to group posts into events
// POST /api/events/cluster
func (h *Handler) HandleCluster(w http.ResponseWriter, r *http.Request) {
	var req ClusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if len(req.Posts) == 0 {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "posts is required")
		return
	}
	if len(req.Posts) > maxClusterPosts {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "too many posts")
		return
	}

	out, err := h.backend.ProcessCluster(r.Context(), req.Posts)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if len(out) == 0 {
		out = json.RawMessage(`{}`)
	}
	writeJSON(w, http.StatusOK, out)
}
