package posts

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/bluesky-social/indigo/atproto/syntax"
)

const blueskyPostCollection = "app.bsky.feed.post"

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".svg": true, ".bmp": true, ".ico": true,
}

// WebURL translates a post URI into a link a browser can open.
// Example: at://did:plc:abc/app.bsky.feed.post/3k2j
//
//	-> https://bsky.app/profile/did:plc:abc/post/3k2j
//
// URIs that are not Bluesky post AT-URIs are returned unchanged.
func WebURL(uri string) string {
	if !strings.HasPrefix(uri, "at://") {
		return uri
	}
	aturi, err := syntax.ParseATURI(uri)
	if err != nil {
		return uri
	}
	if aturi.Collection().String() != blueskyPostCollection || aturi.RecordKey().String() == "" {
		return uri
	}
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", aturi.Authority().String(), aturi.RecordKey().String())
}

// Hostname returns the host of an http(s) URL, or the authority of an AT-URI.
// Returns "" for anything else.
func Hostname(uri string) string {
	switch {
	case strings.HasPrefix(uri, "at://"):
		rest := strings.TrimPrefix(uri, "at://")
		if i := strings.Index(rest, "/"); i >= 0 {
			rest = rest[:i]
		}
		return rest
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		u, err := url.Parse(uri)
		if err != nil {
			return ""
		}
		return u.Hostname()
	default:
		return ""
	}
}

// IsImageURL reports whether a media URL points at an image file, judged by
// the extension of its path.
func IsImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	return imageExtensions[strings.ToLower(path.Ext(u.Path))]
}
