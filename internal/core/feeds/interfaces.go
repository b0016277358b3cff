package feeds

import (
	"context"
	"time"

	"Monitor/internal/core/posts"
	"Monitor/internal/notifications"
)

// PageRequest asks for one page of posts older than Before.
// An empty Category fetches across all categories.
type PageRequest struct {
	Before   *time.Time
	Category posts.Category
	Limit    int
}

// Page is one fetched page of posts
type Page struct {
	Posts []posts.Post
	// Size is the number of records upstream returned, counting records
	// that were dropped as malformed. It drives the has-more decision.
	Size int
}

// Fetcher is the paged-fetch collaborator. Calls are made once, without retry.
type Fetcher interface {
	FetchPosts(ctx context.Context, req PageRequest) (Page, error)
	FetchEvents(ctx context.Context) ([]posts.Event, error)
}

// Stream is the push-stream collaborator
type Stream interface {
	Connect(ctx context.Context, h notifications.Handlers) func()
	IsConnected() bool
	State() notifications.State
}
