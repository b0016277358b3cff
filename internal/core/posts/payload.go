package posts

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// timestampLayouts are tried in order when parsing upstream timestamps
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
}

// PostPayload is the wire shape of a post as returned by the paged posts API,
// carried by "post" envelopes, and sent bare by legacy notification frames.
type PostPayload struct {
	LinkPreview  *LinkPreview `json:"linkPreview,omitempty"`
	ID           string       `json:"id"`
	Content      string       `json:"content"`
	Source       string       `json:"source"`
	Author       string       `json:"author"`
	AuthorName   string       `json:"author_name"`
	AuthorHandle string       `json:"author_handle"`
	AuthorAvatar string       `json:"author_avatar"`
	URI          string       `json:"uri"`
	Lang         string       `json:"lang"`
	PostedAt     string       `json:"posted_at"`
	ReceivedAt   string       `json:"received_at"`
	Media        []string     `json:"media"`
	Categories   []string     `json:"categories"`
	Relevance    float64      `json:"relevance"`
}

// Normalize converts the payload into the canonical Post.
// Missing optional fields become empty values; a missing id or content is an error.
func (p *PostPayload) Normalize() (Post, error) {
	post := Post{
		ID:           strings.TrimSpace(p.ID),
		Content:      p.Content,
		Source:       p.Source,
		Author:       p.Author,
		AuthorName:   p.AuthorName,
		AuthorHandle: p.AuthorHandle,
		AuthorAvatar: p.AuthorAvatar,
		URI:          p.URI,
		Lang:         p.Lang,
		LinkPreview:  p.LinkPreview,
		Media:        nonNil(p.Media),
		Categories:   nonNil(p.Categories),
		Relevance:    int(math.Round(p.Relevance)),
	}
	post.ReceivedAt, _ = ParseTimestamp(p.ReceivedAt)
	post.PostedAt = postedAt(p.PostedAt, post.ReceivedAt)

	if err := post.Validate(); err != nil {
		return Post{}, err
	}
	return post, nil
}

// IngestedPostPayload is the wire shape of an "ingested-post" envelope.
// The ingestion pipeline names several fields differently from the posts API.
type IngestedPostPayload struct {
	LinkPreview   *LinkPreview `json:"link_preview,omitempty"`
	LegacyPreview *LinkPreview `json:"linkPreview,omitempty"`
	ID            string       `json:"id"`
	UUID          string       `json:"uuid"`
	Content       string       `json:"content"`
	Text          string       `json:"text"`
	Source        string       `json:"source"`
	Author        string       `json:"author"`
	AuthorName    string       `json:"author_name"`
	AuthorHandle  string       `json:"author_handle"`
	AuthorAvatar  string       `json:"author_avatar"`
	URI           string       `json:"uri"`
	URL           string       `json:"url"`
	Lang          string       `json:"lang"`
	Language      string       `json:"language"`
	PostedAt      string       `json:"posted_at"`
	PublishedAt   string       `json:"published_at"`
	ReceivedAt    string       `json:"received_at"`
	IngestedAt    string       `json:"ingested_at"`
	Media         []string     `json:"media"`
	Categories    []string     `json:"categories"`
	Tags          []string     `json:"tags"`
	Relevance     float64      `json:"relevance"`
}

// Normalize converts the ingestion payload into the canonical Post.
func (p *IngestedPostPayload) Normalize() (Post, error) {
	id, _ := lo.Coalesce(strings.TrimSpace(p.ID), strings.TrimSpace(p.UUID))
	content, _ := lo.Coalesce(p.Content, p.Text)
	uri, _ := lo.Coalesce(p.URI, p.URL)
	lang, _ := lo.Coalesce(p.Lang, p.Language)
	preview, _ := lo.Coalesce(p.LinkPreview, p.LegacyPreview)
	categories := p.Categories
	if len(categories) == 0 {
		categories = p.Tags
	}

	post := Post{
		ID:           id,
		Content:      content,
		Source:       p.Source,
		Author:       p.Author,
		AuthorName:   p.AuthorName,
		AuthorHandle: p.AuthorHandle,
		AuthorAvatar: p.AuthorAvatar,
		URI:          uri,
		Lang:         lang,
		LinkPreview:  preview,
		Media:        nonNil(p.Media),
		Categories:   nonNil(categories),
		Relevance:    int(math.Round(p.Relevance)),
	}
	received, _ := lo.Coalesce(p.ReceivedAt, p.IngestedAt)
	post.ReceivedAt, _ = ParseTimestamp(received)
	posted, _ := lo.Coalesce(p.PostedAt, p.PublishedAt)
	post.PostedAt = postedAt(posted, post.ReceivedAt)

	if err := post.Validate(); err != nil {
		return Post{}, err
	}
	return post, nil
}

// EventPayload is the wire shape of an event cluster
type EventPayload struct {
	UUID       string        `json:"uuid"`
	Title      string        `json:"title"`
	Summary    string        `json:"summary"`
	Status     string        `json:"status"`
	CreatedAt  string        `json:"created_at"`
	UpdatedAt  string        `json:"updated_at"`
	Posts      []PostPayload `json:"posts"`
	ID         int64         `json:"id"`
	PostsCount int           `json:"posts_count"`
}

// Normalize converts the payload into the canonical Event.
// Member posts that fail validation are dropped.
func (p *EventPayload) Normalize() (Event, error) {
	if strings.TrimSpace(p.UUID) == "" && p.ID == 0 {
		return Event{}, NewValidationError("uuid", "event uuid or id is required")
	}

	status := EventStatus(strings.ToLower(p.Status))
	if status == "" {
		status = EventStatusOpen
	}

	event := Event{
		ID:         p.ID,
		UUID:       strings.TrimSpace(p.UUID),
		Title:      p.Title,
		Summary:    p.Summary,
		Status:     status,
		PostsCount: p.PostsCount,
		Posts:      make([]Post, 0, len(p.Posts)),
	}
	event.CreatedAt, _ = ParseTimestamp(p.CreatedAt)
	event.UpdatedAt, _ = ParseTimestamp(p.UpdatedAt)

	for i := range p.Posts {
		post, err := p.Posts[i].Normalize()
		if err != nil {
			continue
		}
		event.Posts = append(event.Posts, post)
	}
	if event.PostsCount == 0 {
		event.PostsCount = len(event.Posts)
	}
	return event, nil
}

// Key identifies an event for deduplication: its uuid, or its numeric id
func (e *Event) Key() string {
	if e.UUID != "" {
		return e.UUID
	}
	return "id:" + strconv.FormatInt(e.ID, 10)
}

// NormalizePosts normalizes a batch of payloads, returning the valid posts and
// the number of payloads that were dropped.
func NormalizePosts(batch []PostPayload) ([]Post, int) {
	out := make([]Post, 0, len(batch))
	dropped := 0
	for i := range batch {
		post, err := batch[i].Normalize()
		if err != nil {
			dropped++
			continue
		}
		out = append(out, post)
	}
	return out, dropped
}

// ParseTimestamp parses an upstream timestamp in any of the accepted layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func postedAt(raw string, received time.Time) time.Time {
	if t, ok := ParseTimestamp(raw); ok {
		return t
	}
	return received
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
