package previews

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	entries map[string]*Result
	sets    int
	mu      sync.Mutex
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*Result)}
}

func (c *memoryCache) Get(ctx context.Context, url string) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.entries[url]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

func (c *memoryCache) Set(ctx context.Context, url string, result *Result, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[url] = result
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.AllowPrivateHosts = true
	cfg.Timeout = 2 * time.Second
	return cfg
}

func TestResolve_OpenGraph(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "MonitorBot/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, `<html><head>
			<meta property="og:title" content="Storm makes landfall">
			<meta property="og:image" content="/img/storm.jpg">
		</head></html>`)
	}))
	defer srv.Close()

	cache := newMemoryCache()
	svc := NewService(testConfig(), cache)

	result, err := svc.Resolve(context.Background(), srv.URL+"/story")
	require.NoError(t, err)
	assert.Equal(t, "Storm makes landfall", result.Preview.Title)
	assert.Equal(t, srv.URL+"/img/storm.jpg", result.Preview.Image)
	assert.Equal(t, srv.URL+"/story", result.Preview.URL)
	assert.Equal(t, "opengraph", result.Provider)
	assert.Equal(t, "article", result.Kind)

	// Second call is served from cache
	again, err := svc.Resolve(context.Background(), srv.URL+"/story")
	require.NoError(t, err)
	assert.Equal(t, result, again)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, cache.sets)
}

func TestResolve_OEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "https://www.youtube.com/watch?v=abc", r.URL.Query().Get("url"))
		_, _ = io.WriteString(w, `{"type":"video","title":"Press briefing","author_name":"Newsroom","provider_name":"YouTube","thumbnail_url":"https://i.ytimg.com/abc.jpg"}`)
	}))
	defer srv.Close()

	svc := NewService(testConfig(), nil, WithOEmbedEndpoint("youtube.com", srv.URL))

	result, err := svc.Resolve(context.Background(), "https://www.youtube.com/watch?v=abc")
	require.NoError(t, err)
	assert.Equal(t, "Press briefing", result.Preview.Title)
	assert.Equal(t, "By Newsroom", result.Preview.Description)
	assert.Equal(t, "https://i.ytimg.com/abc.jpg", result.Preview.Image)
	assert.Equal(t, "video", result.Kind)
	assert.Equal(t, "youtube", result.Provider)
	assert.Equal(t, "youtube.com", result.Domain)
}

func TestResolve_Unsupported(t *testing.T) {
	svc := NewService(DefaultConfig(), nil)

	for _, raw := range []string{
		"ftp://files.example.com/a",
		"not a url",
		"http://localhost:8080/admin",
		"http://127.0.0.1/",
		"http://10.1.2.3/",
		"http://169.254.169.254/latest/meta-data",
		"http://[::1]/",
	} {
		_, err := svc.Resolve(context.Background(), raw)
		assert.ErrorIs(t, err, ErrUnsupportedURL, raw)
		assert.False(t, svc.Supported(raw), raw)
	}
	assert.True(t, svc.Supported("https://news.example.com/a"))
}

func TestResolve_FailuresOpenBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.FailureThreshold = 2
	svc := NewService(cfg, nil)

	for i := 0; i < 2; i++ {
		_, err := svc.Resolve(context.Background(), srv.URL)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrProviderUnavailable)
	}

	_, err := svc.Resolve(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, int32(2), hits.Load())
}

func TestResolve_NonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	_, err := NewService(testConfig(), nil).Resolve(context.Background(), srv.URL+"/a.png")
	assert.ErrorIs(t, err, ErrUnsupportedURL)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("MONITOR_PREVIEW_TIMEOUT_SECONDS", "nope")
	t.Setenv("MONITOR_PREVIEW_CACHE_TTL_HOURS", "6")

	cfg := ConfigFromEnv()
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 6*time.Hour, cfg.CacheTTL)
	assert.NoError(t, cfg.Validate())

	cfg.CacheTTL = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidCacheTTL)
}
