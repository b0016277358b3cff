package feeds

import (
	"time"

	"Monitor/internal/core/posts"
)

// CategoryStatus summarizes one category for the dashboard
type CategoryStatus struct {
	Cursor    *time.Time `json:"cursor"`
	HasMore   bool       `json:"hasMore"`
	IsLoading bool       `json:"isLoading"`
	Count     int        `json:"count"`
}

// Status summarizes the synchronizer for the dashboard
type Status struct {
	Categories map[posts.Category]CategoryStatus `json:"categories"`
	State      string                            `json:"state"`
	Warning    string                            `json:"warning,omitempty"`
	LoadError  string                            `json:"loadError,omitempty"`
	Connected  bool                              `json:"connected"`
	Loaded     bool                              `json:"loaded"`
}

// Status reports the stream connection and per-category pagination state
func (s *Synchronizer) Status() Status {
	st := s.Snapshot()

	status := Status{
		Categories: make(map[posts.Category]CategoryStatus, len(st.registry)),
		State:      "disabled",
		Warning:    st.Warning(),
		Loaded:     st.Loaded(),
	}
	if err := st.LoadError(); err != nil {
		status.LoadError = err.Error()
	}
	if s.stream != nil {
		status.Connected = s.stream.IsConnected()
		status.State = s.stream.State().String()
	}

	for _, c := range posts.AllCategories() {
		cs := st.Category(c)
		status.Categories[c] = CategoryStatus{
			Cursor:    cs.Cursor,
			HasMore:   cs.HasMore,
			IsLoading: cs.IsLoading,
			Count:     st.Len(c),
		}
	}
	return status
}
