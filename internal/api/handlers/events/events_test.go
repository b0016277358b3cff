package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Monitor/internal/core/feeds"
	"Monitor/internal/core/posts"
	"Monitor/internal/monitorapi"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	events       map[string]posts.Event
	err          error
	clustered    []string
	statusCalls  int
	clusterReply json.RawMessage
}

func (f *fakeBackend) GetEvent(ctx context.Context, uuid string) (*posts.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	event, ok := f.events[uuid]
	if !ok {
		return nil, &monitorapi.APIError{Method: http.MethodGet, Path: "/events/" + uuid, StatusCode: http.StatusNotFound}
	}
	return &event, nil
}

func (f *fakeBackend) UpdateEventStatus(ctx context.Context, uuid string, status posts.EventStatus) (*posts.Event, error) {
	f.statusCalls++
	event, err := f.GetEvent(ctx, uuid)
	if err != nil {
		return nil, err
	}
	event.Status = status
	event.UpdatedAt = event.UpdatedAt.Add(time.Minute)
	return event, nil
}

func (f *fakeBackend) ProcessCluster(ctx context.Context, postIDs []string) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.clustered = postIDs
	return f.clusterReply, nil
}

type stubFetcher struct {
	events []posts.Event
}

func (f *stubFetcher) FetchPosts(ctx context.Context, req feeds.PageRequest) (feeds.Page, error) {
	return feeds.Page{}, nil
}

func (f *stubFetcher) FetchEvents(ctx context.Context) ([]posts.Event, error) {
	return f.events, nil
}

var created = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleEvents() []posts.Event {
	return []posts.Event{
		{
			UUID: "e1", Title: "Rate decision", Summary: "Central bank holds", Status: posts.EventStatusOpen,
			CreatedAt: created, UpdatedAt: created,
			Posts: []posts.Post{{ID: "p1", Relevance: 4}, {ID: "p2", Relevance: 5}},
		},
		{
			UUID: "e2", Title: "Coastal storm", Summary: "Flooding expected", Status: posts.EventStatusOpen,
			CreatedAt: created.Add(-time.Hour), UpdatedAt: created.Add(-time.Hour),
		},
	}
}

func newStore(t *testing.T) *feeds.Synchronizer {
	t.Helper()
	syncer := feeds.NewSynchronizer(feeds.DefaultConfig(), &stubFetcher{events: sampleEvents()}, nil)
	require.NoError(t, syncer.Initialize(context.Background()))
	return syncer
}

func newBackend() *fakeBackend {
	backend := &fakeBackend{events: map[string]posts.Event{}}
	for _, e := range sampleEvents() {
		backend.events[e.UUID] = e
	}
	return backend
}

func withUUID(req *http.Request, uuid string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("uuid", uuid)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestHandleListEvents(t *testing.T) {
	handler := NewHandler(newBackend(), newStore(t))

	tests := []struct {
		name     string
		target   string
		expected []string
	}{
		{"newest first", "/api/events", []string{"e1", "e2"}},
		{"filter by title", "/api/events?filter=STORM", []string{"e2"}},
		{"filter by summary", "/api/events?filter=central", []string{"e1"}},
		{"no match", "/api/events?filter=election", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.HandleListEvents(w, httptest.NewRequest(http.MethodGet, tt.target, nil))
			require.Equal(t, http.StatusOK, w.Code)

			var resp ListEventsResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

			ids := make([]string, 0, len(resp.Events))
			for _, e := range resp.Events {
				ids = append(ids, e.UUID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestHandleListEvents_AverageRelevance(t *testing.T) {
	handler := NewHandler(newBackend(), newStore(t))

	w := httptest.NewRecorder()
	handler.HandleListEvents(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	var resp ListEventsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Events, 2)
	assert.Equal(t, 4.5, resp.Events[0].AverageRelevance)
	assert.Zero(t, resp.Events[1].AverageRelevance)
}

func TestHandleGetEvent(t *testing.T) {
	handler := NewHandler(newBackend(), newStore(t))

	w := httptest.NewRecorder()
	handler.HandleGetEvent(w, withUUID(httptest.NewRequest(http.MethodGet, "/api/events/e1", nil), "e1"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp EventView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Rate decision", resp.Title)

	w = httptest.NewRecorder()
	handler.HandleGetEvent(w, withUUID(httptest.NewRequest(http.MethodGet, "/api/events/missing", nil), "missing"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "EventNotFound", decodeError(t, w).Error)
}

func TestHandleUpdateStatus(t *testing.T) {
	backend := newBackend()
	store := newStore(t)
	handler := NewHandler(backend, store)

	req := httptest.NewRequest(http.MethodPut, "/api/events/e2/status", strings.NewReader(`{"status":"Archived"}`))
	w := httptest.NewRecorder()
	handler.HandleUpdateStatus(w, withUUID(req, "e2"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp EventView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, posts.EventStatusArchived, resp.Status)

	synced := store.Snapshot().Events()
	require.Len(t, synced, 2)
	assert.Equal(t, "e2", synced[1].UUID)
	assert.Equal(t, posts.EventStatusArchived, synced[1].Status)
}

func TestHandleUpdateStatus_Errors(t *testing.T) {
	tests := []struct {
		name      string
		uuid      string
		body      string
		status    int
		errorType string
		calls     int
	}{
		{"invalid body", "e1", `{`, http.StatusBadRequest, "InvalidRequest", 0},
		{"unknown status", "e1", `{"status":"deleted"}`, http.StatusBadRequest, "InvalidStatus", 0},
		{"missing uuid", "", `{"status":"open"}`, http.StatusBadRequest, "InvalidRequest", 0},
		{"unknown event", "missing", `{"status":"open"}`, http.StatusNotFound, "EventNotFound", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newBackend()
			handler := NewHandler(backend, newStore(t))

			req := httptest.NewRequest(http.MethodPut, "/api/events/x/status", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.HandleUpdateStatus(w, withUUID(req, tt.uuid))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.errorType, decodeError(t, w).Error)
			assert.Equal(t, tt.calls, backend.statusCalls)
		})
	}
}

func TestHandleUpdateStatus_UpstreamFailure(t *testing.T) {
	backend := newBackend()
	backend.err = &monitorapi.APIError{Method: http.MethodPut, Path: "/events/e1/status", StatusCode: http.StatusInternalServerError}
	handler := NewHandler(backend, newStore(t))

	req := httptest.NewRequest(http.MethodPut, "/api/events/e1/status", strings.NewReader(`{"status":"open"}`))
	w := httptest.NewRecorder()
	handler.HandleUpdateStatus(w, withUUID(req, "e1"))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "UpstreamError", decodeError(t, w).Error)
}

func TestHandleCluster(t *testing.T) {
	backend := newBackend()
	backend.clusterReply = json.RawMessage(`{"clusters":2}`)
	handler := NewHandler(backend, newStore(t))

	w := httptest.NewRecorder()
	handler.HandleCluster(w, httptest.NewRequest(http.MethodPost, "/api/events/cluster", strings.NewReader(`{"posts":["p1","p2"]}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"clusters":2}`, w.Body.String())
	assert.Equal(t, []string{"p1", "p2"}, backend.clustered)

	w = httptest.NewRecorder()
	handler.HandleCluster(w, httptest.NewRequest(http.MethodPost, "/api/events/cluster", strings.NewReader(`{"posts":[]}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
