package posts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebURL(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "bluesky post with DID authority",
			uri:      "at://did:plc:abc123/app.bsky.feed.post/3k2j4h5g6f7d8",
			expected: "https://bsky.app/profile/did:plc:abc123/post/3k2j4h5g6f7d8",
		},
		{
			name:     "bluesky post with handle authority",
			uri:      "at://alice.bsky.social/app.bsky.feed.post/abc123",
			expected: "https://bsky.app/profile/alice.bsky.social/post/abc123",
		},
		{
			name:     "other collection passes through",
			uri:      "at://did:plc:abc123/app.bsky.feed.like/abc123",
			expected: "at://did:plc:abc123/app.bsky.feed.like/abc123",
		},
		{
			name:     "https passes through",
			uri:      "https://example.com/story",
			expected: "https://example.com/story",
		},
		{
			name:     "empty",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WebURL(tt.uri))
		})
	}
}

func TestHostname(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
	}{
		{uri: "https://news.example.com/a/b?c=d", expected: "news.example.com"},
		{uri: "http://example.org:8080/", expected: "example.org"},
		{uri: "at://alice.bsky.social/app.bsky.feed.post/abc", expected: "alice.bsky.social"},
		{uri: "at://did:plc:abc", expected: "did:plc:abc"},
		{uri: "ftp://example.com/file", expected: ""},
		{uri: "", expected: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Hostname(tt.uri), tt.uri)
	}
}

func TestIsImageURL(t *testing.T) {
	assert.True(t, IsImageURL("https://cdn.example.com/photo.JPG"))
	assert.True(t, IsImageURL("https://cdn.example.com/photo.webp?w=200"))
	assert.False(t, IsImageURL("https://cdn.example.com/video.mp4"))
	assert.False(t, IsImageURL("not a url"))
}
