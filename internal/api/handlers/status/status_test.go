package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"Monitor/internal/core/feeds"
	"Monitor/internal/core/posts"
	"Monitor/internal/monitorapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReporter struct {
	status    feeds.Status
	dismissed int
}

func (f *fakeReporter) Status() feeds.Status { return f.status }

func (f *fakeReporter) DismissWarning() {
	f.dismissed++
	f.status.Warning = ""
}

type fakeUpstream struct {
	health *monitorapi.Health
	err    error
}

func (f *fakeUpstream) NotificationHealth(ctx context.Context) (*monitorapi.Health, error) {
	return f.health, f.err
}

func TestHandleGetStatus(t *testing.T) {
	reporter := &fakeReporter{status: feeds.Status{
		State:     "reconnecting",
		Warning:   "Live updates stopped: retries exhausted",
		Connected: false,
		Loaded:    true,
		Categories: map[posts.Category]feeds.CategoryStatus{
			posts.CategoryAll: {HasMore: true, Count: 12},
		},
	}}
	handler := NewHandler(reporter, nil)

	w := httptest.NewRecorder()
	handler.HandleGetStatus(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp feeds.Status
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "reconnecting", resp.State)
	assert.Equal(t, "Live updates stopped: retries exhausted", resp.Warning)
	assert.True(t, resp.Loaded)
	assert.Equal(t, 12, resp.Categories[posts.CategoryAll].Count)
	assert.True(t, resp.Categories[posts.CategoryAll].HasMore)
}

func TestHandleGetStatus_FromSynchronizer(t *testing.T) {
	syncer := feeds.NewSynchronizer(feeds.DefaultConfig(), nil, nil)
	handler := NewHandler(syncer, nil)

	w := httptest.NewRecorder()
	handler.HandleGetStatus(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp feeds.Status
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "disabled", resp.State)
	assert.False(t, resp.Loaded)
	assert.Len(t, resp.Categories, 7)
}

func TestHandleDismissWarning(t *testing.T) {
	reporter := &fakeReporter{status: feeds.Status{Warning: "Live updates stopped"}}
	handler := NewHandler(reporter, nil)

	w := httptest.NewRecorder()
	handler.HandleDismissWarning(w, httptest.NewRequest(http.MethodDelete, "/api/status/warning", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, reporter.dismissed)
	assert.Empty(t, reporter.Status().Warning)
}

func TestHandleUpstreamHealth(t *testing.T) {
	tests := []struct {
		upstream UpstreamChecker
		name     string
		status   int
	}{
		{name: "healthy", upstream: &fakeUpstream{health: &monitorapi.Health{Healthy: true, IsConnected: true, ConnectionCount: 2}}, status: http.StatusOK},
		{name: "unhealthy", upstream: &fakeUpstream{health: &monitorapi.Health{}}, status: http.StatusServiceUnavailable},
		{name: "unreachable", upstream: &fakeUpstream{err: errors.New("connection refused")}, status: http.StatusBadGateway},
		{name: "not configured", upstream: nil, status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(&fakeReporter{}, tt.upstream)

			w := httptest.NewRecorder()
			handler.HandleUpstreamHealth(w, httptest.NewRequest(http.MethodGet, "/api/status/upstream", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
