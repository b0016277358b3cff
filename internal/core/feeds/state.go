package feeds

import (
	"maps"
	"slices"
	"strings"
	"time"

	"Monitor/internal/core/posts"
)

// CategoryState is the pagination record of one category.
// A nil Cursor means nothing has been fetched for the category.
type CategoryState struct {
	Cursor    *time.Time
	HasMore   bool
	IsLoading bool
}

// State is an immutable snapshot of the synchronizer.
// Transitions never modify a State; they build the next one and leave
// untouched buckets shared with the previous snapshot.
type State struct {
	buckets  map[posts.Category]*bucket
	registry map[posts.Category]CategoryState
	loadErr  error
	warning  string
	events   []posts.Event
	loaded   bool
}

// bucket holds one category's entries, newest first
type bucket struct {
	ids     map[string]struct{}
	entries []posts.Entry
}

func newState() *State {
	st := &State{
		buckets:  make(map[posts.Category]*bucket),
		registry: make(map[posts.Category]CategoryState),
	}
	for _, c := range posts.AllCategories() {
		st.registry[c] = CategoryState{}
	}
	return st
}

// Entries returns a category's entries, newest first. The slice is shared
// with the snapshot and must not be modified.
func (s *State) Entries(category posts.Category) []posts.Entry {
	if b := s.buckets[category]; b != nil {
		return b.entries
	}
	return nil
}

// Len returns the number of entries held for a category
func (s *State) Len(category posts.Category) int {
	return len(s.Entries(category))
}

// Category returns the pagination record of a category
func (s *State) Category(category posts.Category) CategoryState {
	return s.registry[category]
}

// Events returns the known event clusters, newest first
func (s *State) Events() []posts.Event {
	return slices.Clone(s.events)
}

// Warning returns the current user-visible warning, if any
func (s *State) Warning() string {
	return s.warning
}

// Loaded reports whether the initial load has completed, successfully or not
func (s *State) Loaded() bool {
	return s.loaded
}

// LoadError returns the initial load failure, if every category failed
func (s *State) LoadError() error {
	return s.loadErr
}

func (s *State) clone() *State {
	next := *s
	next.buckets = maps.Clone(s.buckets)
	next.registry = maps.Clone(s.registry)
	return &next
}

// withEntries merges entries into their category buckets, skipping ids
// already present. Returns s itself when nothing is new.
func (s *State) withEntries(entries []posts.Entry) *State {
	grouped := make(map[posts.Category][]posts.Entry)
	for _, e := range entries {
		grouped[e.Category] = append(grouped[e.Category], e)
	}

	var next *State
	for category, in := range grouped {
		merged, changed := s.buckets[category].merge(in)
		if !changed {
			continue
		}
		if next == nil {
			next = s.clone()
		}
		next.buckets[category] = merged
	}
	if next == nil {
		return s
	}
	return next
}

// withRegistry applies fn to a copy of the pagination registry
func (s *State) withRegistry(fn func(reg map[posts.Category]CategoryState)) *State {
	next := s.clone()
	fn(next.registry)
	return next
}

func (s *State) withCategory(category posts.Category, cs CategoryState) *State {
	return s.withRegistry(func(reg map[posts.Category]CategoryState) {
		reg[category] = cs
	})
}

// withEvents upserts events by key. An existing event is replaced unless it
// was updated more recently than the incoming one.
func (s *State) withEvents(events ...posts.Event) *State {
	if len(events) == 0 {
		return s
	}

	out := slices.Clone(s.events)
	index := make(map[string]int, len(out))
	for i := range out {
		index[out[i].Key()] = i
	}
	for _, e := range events {
		key := e.Key()
		if i, ok := index[key]; ok {
			if e.UpdatedAt.Before(out[i].UpdatedAt) {
				continue
			}
			out[i] = e
			continue
		}
		index[key] = len(out)
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b posts.Event) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	next := s.clone()
	next.events = out
	return next
}

func (s *State) withWarning(warning string) *State {
	if s.warning == warning {
		return s
	}
	next := s.clone()
	next.warning = warning
	return next
}

func (s *State) withLoaded(err error) *State {
	next := s.clone()
	next.loaded = true
	next.loadErr = err
	return next
}

// merge returns a new bucket holding b's entries plus the unseen ones from in.
// A nil bucket is treated as empty.
func (b *bucket) merge(in []posts.Entry) (*bucket, bool) {
	var ids map[string]struct{}
	var entries []posts.Entry
	if b != nil {
		ids, entries = b.ids, b.entries
	}

	var fresh []posts.Entry
	seen := make(map[string]struct{}, len(in))
	for _, e := range in {
		if _, ok := ids[e.ID]; ok {
			continue
		}
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		fresh = append(fresh, e)
	}
	if len(fresh) == 0 {
		return b, false
	}

	next := &bucket{
		ids:     make(map[string]struct{}, len(ids)+len(fresh)),
		entries: make([]posts.Entry, 0, len(entries)+len(fresh)),
	}
	maps.Copy(next.ids, ids)
	maps.Copy(next.ids, seen)
	next.entries = append(next.entries, entries...)
	next.entries = append(next.entries, fresh...)
	sortEntries(next.entries)
	return next, true
}

// sortEntries orders entries by posted_at descending, then by id
func sortEntries(entries []posts.Entry) {
	slices.SortStableFunc(entries, func(a, b posts.Entry) int {
		if c := b.PostedAt.Compare(a.PostedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// oldestPostedAt returns the earliest non-zero posted_at in batch, or nil
func oldestPostedAt(batch []posts.Post) *time.Time {
	var oldest *time.Time
	for i := range batch {
		t := batch[i].PostedAt
		if t.IsZero() {
			continue
		}
		if oldest == nil || t.Before(*oldest) {
			oldest = &t
		}
	}
	return oldest
}
