package previews

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

type service struct {
	repo      Repository
	client    *http.Client
	breaker   *breaker
	endpoints map[string]string
	cfg       Config
}

// Option configures the service
type Option func(*service)

// WithHTTPClient replaces the client used for outbound fetches
func WithHTTPClient(client *http.Client) Option {
	return func(s *service) {
		s.client = client
	}
}

// WithOEmbedEndpoint routes a host to an oEmbed endpoint
func WithOEmbedEndpoint(host, endpoint string) Option {
	return func(s *service) {
		s.endpoints[strings.TrimPrefix(strings.ToLower(host), "www.")] = endpoint
	}
}

// NewService creates a preview resolver. repo may be nil to disable caching.
func NewService(cfg Config, repo Repository, opts ...Option) Service {
	s := &service{
		repo:      repo,
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		breaker:   newBreaker(cfg.FailureThreshold, cfg.OpenDuration),
		endpoints: make(map[string]string, len(defaultOEmbedEndpoints)),
	}
	for host, endpoint := range defaultOEmbedEndpoints {
		s.endpoints[host] = endpoint
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Supported reports whether url is an http(s) URL the resolver may fetch
func (s *service) Supported(raw string) bool {
	return s.validate(raw) == nil
}

// Resolve returns the preview card for url, from cache when possible.
// oEmbed providers are used for the hosts that have one, OpenGraph tags
// for everything else.
func (s *service) Resolve(ctx context.Context, raw string) (*Result, error) {
	if err := s.validate(raw); err != nil {
		return nil, err
	}

	if s.repo != nil {
		cached, err := s.repo.Get(ctx, raw)
		switch {
		case err == nil:
			return cached, nil
		case !errors.Is(err, ErrNotFound):
			log.Printf("[PREVIEWS] Cache lookup failed for %s: %v", raw, err)
		}
	}

	provider := "opengraph"
	endpoint, isOEmbed := s.endpoints[domainOf(raw)]
	if isOEmbed {
		provider = domainOf(raw)
	}

	if err := s.breaker.allow(provider); err != nil {
		return nil, err
	}

	var (
		result *Result
		err    error
	)
	if isOEmbed {
		result, err = s.fetchOEmbed(ctx, endpoint, raw)
	} else {
		result, err = s.fetchOpenGraph(ctx, raw)
	}
	if err != nil {
		s.breaker.failure(provider, err)
		return nil, fmt.Errorf("failed to resolve preview for %s: %w", raw, err)
	}
	s.breaker.success(provider)

	if s.repo != nil {
		if cacheErr := s.repo.Set(ctx, raw, result, s.cfg.CacheTTL); cacheErr != nil {
			log.Printf("[PREVIEWS] Warning: failed to cache preview for %s: %v", raw, cacheErr)
		}
	}
	return result, nil
}

func (s *service) validate(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrUnsupportedURL, raw)
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, u.Scheme)
	}
	if !s.cfg.AllowPrivateHosts && isPrivateHost(u.Hostname()) {
		return fmt.Errorf("%w: private host %q", ErrUnsupportedURL, u.Hostname())
	}
	return nil
}

// isPrivateHost catches literal loopback, private and link-local addresses
// and localhost names. Names are not resolved.
func isPrivateHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".internal") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}

var linkPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// FirstLink returns the first http(s) link in text, without trailing
// sentence punctuation, or "" when there is none.
func FirstLink(text string) string {
	link := linkPattern.FindString(text)
	return strings.TrimRight(link, ".,;:!?)]}")
}
