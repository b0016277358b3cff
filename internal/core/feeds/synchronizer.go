package feeds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"Monitor/internal/core/posts"
	"Monitor/internal/notifications"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Synchronizer keeps the in-memory feed: entries merged from paged fetches
// and the push stream, plus per-category pagination state.
//
// All state lives in an immutable State behind an atomic pointer. Every
// change is a pure transition from the previous snapshot applied with
// compare-and-swap, so a loadMore completing while a push arrives never
// loses either update. Network calls happen outside transitions.
type Synchronizer struct {
	fetcher    Fetcher
	stream     Stream
	disconnect func()
	state      atomic.Pointer[State]
	classifier posts.Classifier
	cfg        Config
	generation atomic.Uint64
	stopped    atomic.Bool
	mu         sync.Mutex
}

// NewSynchronizer creates a synchronizer. stream may be nil, in which case
// the feed only changes through Initialize and LoadMore. Non-positive cfg
// fields take their DefaultConfig values.
func NewSynchronizer(cfg Config, fetcher Fetcher, stream Stream) *Synchronizer {
	cfg = cfg.withDefaults()
	s := &Synchronizer{
		cfg:        cfg,
		fetcher:    fetcher,
		stream:     stream,
		classifier: posts.Classifier{RelevanceThreshold: cfg.RelevantThreshold},
	}
	s.state.Store(newState())
	return s
}

// Start connects the push stream and runs the initial load.
// The stream is connected first so nothing published during the load is
// missed; duplicates are merged away. The returned error is Initialize's.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.mu.Lock()
	s.generation.Add(1)
	s.stopped.Store(false)
	if s.stream != nil {
		if s.disconnect != nil {
			s.disconnect()
		}
		s.disconnect = s.stream.Connect(ctx, notifications.Handlers{
			OnPost:  s.handlePost,
			OnEvent: s.handleEvent,
			OnError: s.handleStreamError,
		})
	}
	s.mu.Unlock()

	return s.Initialize(ctx)
}

// Stop disconnects the push stream. Fetches still in flight complete but
// their results are discarded.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped.Store(true)
	s.generation.Add(1)
	if s.disconnect != nil {
		s.disconnect()
		s.disconnect = nil
	}

	s.update(func(st *State) *State {
		return st.withRegistry(func(reg map[posts.Category]CategoryState) {
			for c, cs := range reg {
				cs.IsLoading = false
				reg[c] = cs
			}
		})
	})
	slog.Info("[FEEDS] synchronizer stopped")
}

// Snapshot returns the current state
func (s *Synchronizer) Snapshot() *State {
	return s.state.Load()
}

// View returns a category's entries filtered by text, newest first
func (s *Synchronizer) View(category posts.Category, filter string) []posts.Entry {
	return View(s.Snapshot(), category, filter)
}

// Initialize fetches the first page of every server-side category and of
// the unfiltered feed concurrently, plus the event list.
//
// A failing category is logged and left with no cursor and no more pages;
// it does not affect the others. Only when every category fails is
// ErrInitialLoadFailed returned. The relevant category is not fetched: its
// entries come from classifying the other results and its pagination
// follows the unfiltered feed.
func (s *Synchronizer) Initialize(ctx context.Context) error {
	gen := s.generation.Load()
	fetched := lo.Filter(posts.AllCategories(), func(c posts.Category, _ int) bool {
		return c != posts.CategoryRelevant
	})

	s.update(func(st *State) *State {
		return st.withRegistry(func(reg map[posts.Category]CategoryState) {
			for c, cs := range reg {
				cs.IsLoading = true
				reg[c] = cs
			}
		})
	})

	type result struct {
		err  error
		page Page
	}
	results := make([]result, len(fetched))
	var events []posts.Event

	var g errgroup.Group
	g.SetLimit(s.cfg.InitialFetchConcurrency)
	for i, category := range fetched {
		i, category := i, category
		g.Go(func() error {
			page, err := s.fetcher.FetchPosts(ctx, s.pageRequest(category, nil))
			if err != nil {
				slog.Warn("[FEEDS] initial fetch failed", "category", category, "error", err)
			}
			results[i] = result{page: page, err: err}
			return nil
		})
	}
	g.Go(func() error {
		list, err := s.fetcher.FetchEvents(ctx)
		if err != nil {
			slog.Warn("[FEEDS] initial events fetch failed", "error", err)
			return nil
		}
		events = list
		return nil
	})
	_ = g.Wait()

	if !s.live(gen) {
		return ErrStopped
	}

	var (
		batch []posts.Post
		errs  []error
	)
	seeds := make(map[posts.Category]CategoryState, len(fetched)+1)
	for i, category := range fetched {
		r := results[i]
		if r.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", category, r.err))
			seeds[category] = CategoryState{}
			continue
		}
		batch = append(batch, r.page.Posts...)
		seeds[category] = CategoryState{
			Cursor:  oldestPostedAt(r.page.Posts),
			HasMore: r.page.Size >= s.cfg.PageSize,
		}
	}
	seeds[posts.CategoryRelevant] = seeds[posts.CategoryAll]

	unique := lo.UniqBy(batch, func(p posts.Post) string { return p.ID })
	entries := s.classifier.ClassifyAll(unique)

	var loadErr error
	if len(errs) == len(fetched) {
		loadErr = fmt.Errorf("%w: %w", ErrInitialLoadFailed, errors.Join(errs...))
	}

	s.update(func(st *State) *State {
		next := st.withEntries(entries).withEvents(events...)
		next = next.withRegistry(func(reg map[posts.Category]CategoryState) {
			for c, seed := range seeds {
				reg[c] = mergeSeed(reg[c], seed)
			}
		})
		return next.withLoaded(loadErr)
	})

	if loadErr != nil {
		slog.Error("[FEEDS] initial load failed for every category", "error", loadErr)
		return loadErr
	}
	slog.Info("[FEEDS] initial load complete",
		"posts", len(unique),
		"entries", len(entries),
		"events", len(events),
		"failed_categories", len(errs),
	)
	return nil
}

// LoadMore fetches the page before a category's cursor and merges it.
//
// It does nothing while the category is already loading or once it has no
// more pages. A fetch failure disables further paging for the category and
// is logged rather than returned; a fetch abandoned because ctx was cancelled
// only clears the loading flag. The only error is for an unknown category.
func (s *Synchronizer) LoadMore(ctx context.Context, category posts.Category) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", posts.ErrUnknownCategory, category)
	}

	var (
		cursor  *time.Time
		started bool
	)
	s.update(func(st *State) *State {
		cs := st.Category(category)
		started = !cs.IsLoading && cs.HasMore
		if !started {
			return st
		}
		cursor = cs.Cursor
		cs.IsLoading = true
		return st.withCategory(category, cs)
	})
	if !started {
		return nil
	}

	gen := s.generation.Load()
	page, err := s.fetcher.FetchPosts(ctx, s.pageRequest(category, cursor))
	if !s.live(gen) {
		return nil
	}

	if err != nil && ctx.Err() != nil {
		// The caller went away; the category can still page for others.
		slog.Info("[FEEDS] load more cancelled", "category", category, "error", err)
		s.update(func(st *State) *State {
			cs := st.Category(category)
			cs.IsLoading = false
			return st.withCategory(category, cs)
		})
		return nil
	}

	if err != nil {
		slog.Warn("[FEEDS] load more failed, disabling pagination", "category", category, "error", err)
		s.update(func(st *State) *State {
			cs := st.Category(category)
			cs.IsLoading = false
			cs.HasMore = false
			return st.withCategory(category, cs)
		})
		return nil
	}

	entries := s.classifier.ClassifyAll(page.Posts)
	oldest := oldestPostedAt(page.Posts)
	hasMore := page.Size >= s.cfg.PageSize

	s.update(func(st *State) *State {
		next := st.withEntries(entries)
		cs := next.Category(category)
		if oldest != nil && (cs.Cursor == nil || oldest.Before(*cs.Cursor)) {
			cs.Cursor = oldest
		}
		cs.HasMore = hasMore
		cs.IsLoading = false
		return next.withCategory(category, cs)
	})
	return nil
}

// UpsertEvent records an event that changed outside the push stream
func (s *Synchronizer) UpsertEvent(event posts.Event) {
	s.update(func(st *State) *State { return st.withEvents(event) })
}

// DismissWarning clears the user-visible warning
func (s *Synchronizer) DismissWarning() {
	s.update(func(st *State) *State { return st.withWarning("") })
}

func (s *Synchronizer) handlePost(post posts.Post) {
	if s.stopped.Load() {
		return
	}
	entries := s.classifier.Classify(&post)
	if len(entries) == 0 {
		slog.Warn("[FEEDS] dropped malformed post from stream", "post_id", post.ID)
		return
	}
	s.update(func(st *State) *State { return st.withEntries(entries) })
}

func (s *Synchronizer) handleEvent(event posts.Event) {
	if s.stopped.Load() {
		return
	}
	s.UpsertEvent(event)
}

func (s *Synchronizer) handleStreamError(err error) {
	if s.stopped.Load() {
		return
	}
	slog.Warn("[FEEDS] live updates unavailable", "error", err)
	warning := "Live updates stopped: " + err.Error()
	s.update(func(st *State) *State { return st.withWarning(warning) })
}

// update applies a pure transition with compare-and-swap, retrying when
// another transition won the race. fn may run more than once.
func (s *Synchronizer) update(fn func(*State) *State) *State {
	for {
		prev := s.state.Load()
		next := fn(prev)
		if next == prev || s.state.CompareAndSwap(prev, next) {
			return next
		}
	}
}

func (s *Synchronizer) live(gen uint64) bool {
	return !s.stopped.Load() && s.generation.Load() == gen
}

func (s *Synchronizer) pageRequest(category posts.Category, before *time.Time) PageRequest {
	req := PageRequest{Limit: s.cfg.PageSize, Before: before}
	if category.ServerSide() {
		req.Category = category
	}
	return req
}

// mergeSeed combines a fresh initial-load record with whatever a concurrent
// transition stored meanwhile. The older cursor wins.
func mergeSeed(current, seed CategoryState) CategoryState {
	out := seed
	if current.Cursor != nil && (seed.Cursor == nil || current.Cursor.Before(*seed.Cursor)) {
		out.Cursor = current.Cursor
	}
	out.IsLoading = false
	return out
}
