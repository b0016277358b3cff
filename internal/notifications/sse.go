package notifications

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
)

// maxSSELine bounds a single SSE line so a misbehaving server cannot grow the buffer unbounded
const maxSSELine = 1 << 20

// SSETransport reads the push stream as Server-Sent Events over HTTP.
type SSETransport struct {
	client *http.Client
}

// NewSSETransport creates an SSE transport. The client must not set a
// Timeout, since it would cut the long-lived stream; nil uses a fresh client.
func NewSSETransport(client *http.Client) *SSETransport {
	if client == nil {
		client = &http.Client{}
	}
	return &SSETransport{client: client}
}

// Dial opens the event stream. The request lives as long as ctx.
func (t *SSETransport) Dial(ctx context.Context, url string) (Conn, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open event stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("event stream returned status %d", resp.StatusCode)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "text/event-stream" {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("event stream returned content type %q", resp.Header.Get("Content-Type"))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELine)

	return &sseConn{body: resp.Body, scanner: scanner}, nil
}

type sseConn struct {
	body      io.ReadCloser
	scanner   *bufio.Scanner
	closeOnce sync.Once
	closeErr  error
}

// ReadFrame assembles the next dispatched event. Comment lines and id/retry
// fields are ignored. An event named "error" is reported as transient.
func (c *sseConn) ReadFrame(ctx context.Context) (Frame, error) {
	var (
		event string
		data  bytes.Buffer
		seen  bool
	)

	for c.scanner.Scan() {
		line := c.scanner.Text()

		if line == "" {
			if event == "error" {
				return Frame{}, fmt.Errorf("%w: server reported error: %s", ErrTransient, data.String())
			}
			if !seen {
				event = ""
				continue
			}
			return Frame{Event: event, Data: data.Bytes()}, nil
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			event = value
		case "data":
			if seen {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			seen = true
		}
	}

	if ctx.Err() != nil {
		return Frame{}, ctx.Err()
	}
	if err := c.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return Frame{}, fmt.Errorf("%w: line exceeds %d bytes", ErrStreamClosed, maxSSELine)
		}
		return Frame{}, fmt.Errorf("%w: %v", ErrStreamClosed, err)
	}
	return Frame{}, fmt.Errorf("%w: %v", ErrStreamClosed, io.EOF)
}

func (c *sseConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.body.Close()
	})
	return c.closeErr
}
