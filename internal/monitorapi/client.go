package monitorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"Monitor/internal/core/feeds"
	"Monitor/internal/core/posts"

	"golang.org/x/time/rate"
)

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 10 << 20

// Client talks to the monitor backend's REST API. It makes each call once;
// retrying is left to callers.
type Client struct {
	tokens  TokenSource
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// PostsQuery filters the posts listing. Zero values are omitted.
type PostsQuery struct {
	Before     *time.Time
	Categories []string
	Limit      int
}

// Health is the notification service health report
type Health struct {
	Healthy         bool `json:"healthy"`
	IsConnected     bool `json:"isConnected"`
	ConnectionCount int  `json:"connectionCount"`
}

type eventsResponse struct {
	Events []posts.EventPayload `json:"events"`
}

type statusRequest struct {
	Status posts.EventStatus `json:"status"`
}

type clusterRequest struct {
	Input clusterInput `json:"input"`
}

type clusterInput struct {
	Posts []string `json:"posts"`
}

// NewClient creates a monitor API client. A nil tokens sends every request
// unauthenticated.
func NewClient(cfg Config, tokens TokenSource) *Client {
	if tokens == nil {
		tokens = StaticToken("")
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultConfig().RequestsPerSecond
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		tokens:  tokens,
	}
}

// GetPosts lists posts, newest first, as the raw wire payloads
func (c *Client) GetPosts(ctx context.Context, q PostsQuery) ([]posts.PostPayload, error) {
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Before != nil {
		params.Set("before", q.Before.UTC().Format(time.RFC3339Nano))
	}
	if len(q.Categories) > 0 {
		params.Set("categories", strings.Join(q.Categories, ","))
	}

	var out []posts.PostPayload
	if err := c.do(ctx, http.MethodGet, "/posts", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchPosts fetches one page for the synchronizer. Malformed posts are
// dropped and logged; Page.Size still counts them.
func (c *Client) FetchPosts(ctx context.Context, req feeds.PageRequest) (feeds.Page, error) {
	q := PostsQuery{Limit: req.Limit, Before: req.Before}
	if req.Category != "" {
		q.Categories = []string{string(req.Category)}
	}

	raw, err := c.GetPosts(ctx, q)
	if err != nil {
		return feeds.Page{}, err
	}

	batch, dropped := posts.NormalizePosts(raw)
	if dropped > 0 {
		log.Printf("[MONITORAPI] Dropped %d malformed posts from page (category=%q)", dropped, req.Category)
	}
	return feeds.Page{Posts: batch, Size: len(raw)}, nil
}

// GetEvents lists event clusters. limit <= 0 uses the server default.
func (c *Client) GetEvents(ctx context.Context, limit int) ([]posts.Event, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp eventsResponse
	if err := c.do(ctx, http.MethodGet, "/events", params, nil, &resp); err != nil {
		return nil, err
	}

	events := make([]posts.Event, 0, len(resp.Events))
	for i := range resp.Events {
		event, err := resp.Events[i].Normalize()
		if err != nil {
			log.Printf("[MONITORAPI] Dropped malformed event: %v", err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// FetchEvents lists events for the synchronizer
func (c *Client) FetchEvents(ctx context.Context) ([]posts.Event, error) {
	return c.GetEvents(ctx, 0)
}

// GetEvent fetches one event by uuid
func (c *Client) GetEvent(ctx context.Context, uuid string) (*posts.Event, error) {
	var payload posts.EventPayload
	if err := c.do(ctx, http.MethodGet, "/events/"+url.PathEscape(uuid), nil, nil, &payload); err != nil {
		return nil, err
	}
	event, err := payload.Normalize()
	if err != nil {
		return nil, fmt.Errorf("malformed event %s: %w", uuid, err)
	}
	return &event, nil
}

// UpdateEventStatus sets an event's moderation status and returns the updated event
func (c *Client) UpdateEventStatus(ctx context.Context, uuid string, status posts.EventStatus) (*posts.Event, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", posts.ErrInvalidEventStatus, status)
	}

	var payload posts.EventPayload
	path := "/events/" + url.PathEscape(uuid) + "/status"
	if err := c.do(ctx, http.MethodPut, path, nil, statusRequest{Status: status}, &payload); err != nil {
		return nil, err
	}
	event, err := payload.Normalize()
	if err != nil {
		return nil, fmt.Errorf("malformed event %s: %w", uuid, err)
	}
	return &event, nil
}

// ProcessCluster asks the backend to group the given posts into events.
// The response shape is owned by the backend and returned undecoded.
func (c *Client) ProcessCluster(ctx context.Context, postIDs []string) (json.RawMessage, error) {
	var out json.RawMessage
	body := clusterRequest{Input: clusterInput{Posts: postIDs}}
	if err := c.do(ctx, http.MethodPost, "/events/cluster", nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NotificationHealth reports the backend's push-stream health
func (c *Client) NotificationHealth(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.do(ctx, http.MethodGet, "/notifications/health", nil, nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// do sends one request and decodes a JSON response into out
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		log.Printf("[MONITORAPI] Failed to get session token, sending unauthenticated: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("[MONITORAPI] Failed to close response body: %v", closeErr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(truncate(string(data), 200)),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
