package posts

import (
	"math"
	"time"
)

// LinkPreview is the unfurled card of the first link in a post
type LinkPreview struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Post represents a social-media item ingested by the monitor backend.
// PostedAt is authoritative for ordering; Categories holds raw upstream tags.
type Post struct {
	PostedAt     time.Time    `json:"posted_at"`
	ReceivedAt   time.Time    `json:"received_at"`
	LinkPreview  *LinkPreview `json:"linkPreview,omitempty"`
	ID           string       `json:"id"`
	Content      string       `json:"content"`
	Source       string       `json:"source"`
	Author       string       `json:"author"`
	AuthorName   string       `json:"author_name,omitempty"`
	AuthorHandle string       `json:"author_handle,omitempty"`
	AuthorAvatar string       `json:"author_avatar,omitempty"`
	URI          string       `json:"uri,omitempty"`
	Lang         string       `json:"lang,omitempty"`
	Media        []string     `json:"media,omitempty"`
	Categories   []string     `json:"categories"`
	Relevance    int          `json:"relevance"`
}

// Validate checks the mandatory fields of a post
func (p *Post) Validate() error {
	if p.ID == "" {
		return NewValidationError("id", "post id is required")
	}
	if p.Content == "" {
		return NewValidationError("content", "post content is required")
	}
	return nil
}

// DisplaySource returns the best human-readable origin of the post
func (p *Post) DisplaySource() string {
	switch {
	case p.AuthorName != "":
		return p.AuthorName
	case p.Author != "":
		return p.Author
	default:
		return p.Source
	}
}

// EventStatus is the moderation state of an event cluster
type EventStatus string

const (
	EventStatusOpen      EventStatus = "open"
	EventStatusArchived  EventStatus = "archived"
	EventStatusDismissed EventStatus = "dismissed"
)

// Valid reports whether s is a known event status
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusOpen, EventStatusArchived, EventStatusDismissed:
		return true
	}
	return false
}

// Event is a server-computed cluster of related posts
type Event struct {
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	UUID       string      `json:"uuid"`
	Title      string      `json:"title"`
	Summary    string      `json:"summary"`
	Status     EventStatus `json:"status"`
	Posts      []Post      `json:"posts"`
	ID         int64       `json:"id"`
	PostsCount int         `json:"posts_count"`
}

// AverageRelevance returns the mean relevance of the event's posts,
// rounded to one decimal place. Events without posts average 0.
func (e *Event) AverageRelevance() float64 {
	if len(e.Posts) == 0 {
		return 0
	}
	sum := 0
	for _, p := range e.Posts {
		sum += p.Relevance
	}
	return math.Round(float64(sum)/float64(len(e.Posts))*10) / 10
}

// Entry is the projection of a post into exactly one display category.
// Entries are immutable once produced by Classify.
type Entry struct {
	PostedAt        time.Time    `json:"posted_at"`
	LinkPreview     *LinkPreview `json:"linkPreview,omitempty"`
	ID              string       `json:"id"`
	PostID          string       `json:"post_id"`
	Text            string       `json:"text"`
	Source          string       `json:"source"`
	Author          string       `json:"author"`
	AuthorName      string       `json:"author_name,omitempty"`
	AuthorHandle    string       `json:"author_handle,omitempty"`
	AuthorAvatar    string       `json:"author_avatar,omitempty"`
	URI             string       `json:"uri,omitempty"`
	WebURL          string       `json:"web_url,omitempty"`
	Lang            string       `json:"lang,omitempty"`
	Category        Category     `json:"category"`
	PrimaryCategory Category     `json:"primaryCategory"`
	Tags            []string     `json:"tags"`
	Media           []string     `json:"media,omitempty"`
	Relevance       int          `json:"relevance"`
}

// Accent returns the accent color the entry is rendered with: the primary
// category's accent in the all/relevant buckets, the bucket's own otherwise.
func (e *Entry) Accent() string {
	if e.Category == CategoryAll || e.Category == CategoryRelevant {
		return e.PrimaryCategory.Info().Accent
	}
	return e.Category.Info().Accent
}

// EntryID builds the composite id of a post's projection into a category
func EntryID(postID string, category Category) string {
	return postID + "-" + string(category)
}
