package previews

import (
	"context"
	"errors"
	"time"

	"Monitor/internal/core/posts"
)

// Result is a resolved link card and where it came from
type Result struct {
	Preview  posts.LinkPreview `json:"preview"`
	Kind     string            `json:"kind"`     // "article", "video" or "image"
	Provider string            `json:"provider"` // "opengraph" or the oEmbed provider name
	Domain   string            `json:"domain"`
}

// Repository caches resolved previews by URL
type Repository interface {
	// Get returns ErrNotFound when nothing unexpired is cached for url.
	Get(ctx context.Context, url string) (*Result, error)
	// Set stores result for url until now + ttl, replacing any existing entry.
	Set(ctx context.Context, url string, result *Result, ttl time.Duration) error
}

// Service resolves link previews for posts that arrive without one
type Service interface {
	Resolve(ctx context.Context, url string) (*Result, error)
	Supported(url string) bool
}

var (
	// ErrNotFound is returned when no unexpired preview is cached
	ErrNotFound = errors.New("preview not found")

	// ErrUnsupportedURL is returned for URLs that are not public http(s) pages
	ErrUnsupportedURL = errors.New("unsupported URL")

	// ErrProviderUnavailable is returned while a provider's breaker is open
	ErrProviderUnavailable = errors.New("preview provider unavailable")
)
