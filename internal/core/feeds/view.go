package feeds

import (
	"strings"

	"Monitor/internal/core/posts"

	"github.com/samber/lo"
)

// View derives the display list of one category from a snapshot: entries
// whose text contains filter (case-insensitive), newest first.
// An empty filter keeps everything.
func View(state *State, category posts.Category, filter string) []posts.Entry {
	needle := strings.ToLower(strings.TrimSpace(filter))
	out := lo.Filter(state.Entries(category), func(e posts.Entry, _ int) bool {
		return needle == "" || strings.Contains(strings.ToLower(e.Text), needle)
	})
	sortEntries(out)
	return out
}

// FilterEvents returns the events whose title or summary contains filter
// (case-insensitive), keeping their order.
func FilterEvents(events []posts.Event, filter string) []posts.Event {
	needle := strings.ToLower(strings.TrimSpace(filter))
	return lo.Filter(events, func(e posts.Event, _ int) bool {
		return needle == "" ||
			strings.Contains(strings.ToLower(e.Title), needle) ||
			strings.Contains(strings.ToLower(e.Summary), needle)
	})
}
