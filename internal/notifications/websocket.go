package notifications

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// wsReadTimeout is extended on every pong; a silent peer is dropped after it
	wsReadTimeout = 60 * time.Second
	wsPingPeriod  = 30 * time.Second
	wsWriteWait   = 10 * time.Second
)

// WebSocketTransport reads the push stream over a WebSocket connection,
// one text message per frame.
type WebSocketTransport struct {
	dialer *websocket.Dialer
}

// NewWebSocketTransport creates a WebSocket transport. nil uses websocket.DefaultDialer.
func NewWebSocketTransport(dialer *websocket.Dialer) *WebSocketTransport {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	return &WebSocketTransport{dialer: dialer}
}

// Dial connects and starts the keepalive pinger.
func (t *WebSocketTransport) Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := t.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to notifications websocket: %w", err)
	}

	// Set read deadline to detect connection issues
	if err := conn.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
		log.Printf("[NOTIFICATIONS] Failed to set read deadline: %v", err)
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			log.Printf("[NOTIFICATIONS] Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	wc := &wsConn{conn: conn, done: make(chan struct{})}
	go wc.ping()
	go func() {
		select {
		case <-ctx.Done():
			_ = wc.Close()
		case <-wc.done:
		}
	}()

	return wc, nil
}

type wsConn struct {
	conn      *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func (c *wsConn) ping() {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(wsWriteWait)); err != nil {
				log.Printf("[NOTIFICATIONS] Failed to send ping: %v", err)
				_ = c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// ReadFrame returns the next data message. Any read error closes the stream.
func (c *wsConn) ReadFrame(ctx context.Context) (Frame, error) {
	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return Frame{}, ctx.Err()
			}
			return Frame{}, fmt.Errorf("%w: %v", ErrStreamClosed, err)
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		return Frame{Data: message}, nil
	}
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
