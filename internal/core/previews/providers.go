package previews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"Monitor/internal/core/posts"

	"golang.org/x/net/html"
)

// defaultOEmbedEndpoints maps a host (without "www.") to its oEmbed endpoint
var defaultOEmbedEndpoints = map[string]string{
	"youtube.com":    "https://www.youtube.com/oembed",
	"youtu.be":       "https://www.youtube.com/oembed",
	"reddit.com":     "https://www.reddit.com/oembed",
	"streamable.com": "https://api.streamable.com/oembed",
}

type oEmbedResponse struct {
	Type         string `json:"type"`
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ProviderName string `json:"provider_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// metaTags are the preview-relevant tags found in a page
type metaTags struct {
	title       string
	description string
	image       string
	canonical   string
}

func domainOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// get performs a GET with the resolver's user agent, failing on non-200
func (s *service) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s returned status %d", domainOf(target), resp.StatusCode)
	}
	return resp, nil
}

func (s *service) fetchOEmbed(ctx context.Context, endpoint, target string) (*Result, error) {
	resp, err := s.get(ctx, endpoint+"?format=json&url="+url.QueryEscape(target))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var oe oEmbedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, s.cfg.MaxBodyBytes)).Decode(&oe); err != nil {
		return nil, fmt.Errorf("failed to decode oEmbed response: %w", err)
	}

	result := &Result{
		Preview: posts.LinkPreview{
			URL:   target,
			Title: oe.Title,
			Image: oe.ThumbnailURL,
		},
		Provider: strings.ToLower(oe.ProviderName),
		Domain:   domainOf(target),
		Kind:     "article",
	}
	if oe.AuthorName != "" {
		result.Preview.Description = "By " + oe.AuthorName
	}
	switch oe.Type {
	case "video":
		result.Kind = "video"
	case "photo":
		result.Kind = "image"
	}
	if result.Provider == "" {
		result.Provider = result.Domain
	}
	return result, nil
}

func (s *service) fetchOpenGraph(ctx context.Context, target string) (*Result, error) {
	resp, err := s.get(ctx, target)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, fmt.Errorf("%w: content type %q", ErrUnsupportedURL, ct)
	}

	tags := parseMetaTags(io.LimitReader(resp.Body, s.cfg.MaxBodyBytes))
	if tags.title == "" && tags.description == "" && tags.image == "" {
		return nil, fmt.Errorf("no preview metadata on %s", domainOf(target))
	}

	result := &Result{
		Preview: posts.LinkPreview{
			URL:         target,
			Title:       tags.title,
			Description: tags.description,
			Image:       resolveReference(target, tags.image),
		},
		Provider: "opengraph",
		Domain:   domainOf(target),
		Kind:     "article",
	}
	if canonical := resolveReference(target, tags.canonical); canonical != "" {
		result.Preview.URL = canonical
	}
	return result, nil
}

// parseMetaTags reads OpenGraph tags with <title> and meta description as
// fallbacks. Parsing stops at </head>.
func parseMetaTags(r io.Reader) metaTags {
	var (
		tags      metaTags
		pageTitle string
		metaDesc  string
		inTitle   bool
	)

	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return tags.withFallbacks(pageTitle, metaDesc)
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "title":
				inTitle = tt == html.StartTagToken
			case "meta":
				property, name, content := attr(tok, "property"), attr(tok, "name"), attr(tok, "content")
				switch property {
				case "og:title":
					tags.title = firstNonEmpty(tags.title, content)
				case "og:description":
					tags.description = firstNonEmpty(tags.description, content)
				case "og:image", "og:image:url":
					tags.image = firstNonEmpty(tags.image, content)
				case "og:url":
					tags.canonical = firstNonEmpty(tags.canonical, content)
				}
				if strings.EqualFold(name, "description") {
					metaDesc = firstNonEmpty(metaDesc, content)
				}
			}
		case html.TextToken:
			if inTitle && pageTitle == "" {
				pageTitle = strings.TrimSpace(string(z.Text()))
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "title":
				inTitle = false
			case "head":
				return tags.withFallbacks(pageTitle, metaDesc)
			}
		}
	}
}

func (t metaTags) withFallbacks(title, description string) metaTags {
	t.title = firstNonEmpty(t.title, title)
	t.description = firstNonEmpty(t.description, description)
	return t
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func firstNonEmpty(current, candidate string) string {
	if current != "" {
		return current
	}
	return candidate
}

// resolveReference makes a possibly relative ref absolute against base
func resolveReference(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}
