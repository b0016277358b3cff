package notifications

import (
	"context"
	"net/http"
	"strings"
)

// Transport opens push-stream connections.
type Transport interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Conn is one open push-stream connection.
type Conn interface {
	// ReadFrame blocks until the next frame arrives. Errors wrapping
	// ErrTransient leave the connection readable; any other error means the
	// stream is closed and the connection must be discarded.
	ReadFrame(ctx context.Context) (Frame, error)

	// Close releases the connection. Safe to call more than once.
	Close() error
}

// NewTransport picks the transport for an endpoint: WebSocket for ws:// and
// wss:// URLs, Server-Sent Events for everything else.
func NewTransport(url string, httpClient *http.Client) Transport {
	if strings.HasPrefix(url, "ws://") || strings.HasPrefix(url, "wss://") {
		return NewWebSocketTransport(nil)
	}
	return NewSSETransport(httpClient)
}
