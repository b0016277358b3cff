package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"Monitor/internal/core/posts"
)

// State is the lifecycle state of the stream client
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	// StateGaveUp is terminal until the next Connect
	StateGaveUp
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateGaveUp:
		return "gave-up"
	default:
		return "unknown"
	}
}

// Handlers receive decoded stream messages. They run on the client's read
// goroutine, one at a time, in arrival order. Nil handlers are skipped.
type Handlers struct {
	OnPost  func(posts.Post)
	OnEvent func(posts.Event)
	// OnError is only called with ErrRetriesExhausted; every other failure
	// is retried or logged.
	OnError func(error)
}

// Client owns a single push-stream connection to the notifications endpoint
// and keeps it open with exponential backoff.
type Client struct {
	transport Transport
	// sleep waits out a reconnect delay; replaced in tests
	sleep      func(ctx context.Context, d time.Duration) error
	cancel     context.CancelFunc
	conn       Conn
	cfg        Config
	generation uint64
	state      State
	mu         sync.Mutex
}

// NewClient creates a stream client. A nil transport is chosen from the URL scheme.
func NewClient(cfg Config, transport Transport) *Client {
	if transport == nil {
		transport = NewTransport(cfg.URL, nil)
	}
	return &Client{
		cfg:       cfg,
		transport: transport,
		sleep:     sleepContext,
	}
}

// Connect opens the stream and starts delivering messages to h.
// Any existing connection is torn down first. The returned function
// disconnects; it is the same as calling Disconnect.
func (c *Client) Connect(ctx context.Context, h Handlers) func() {
	c.Disconnect()

	c.mu.Lock()
	c.generation++
	gen := c.generation
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = StateConnecting
	c.mu.Unlock()

	log.Printf("[NOTIFICATIONS] Starting stream client: %s", c.cfg.URL)
	go c.run(runCtx, gen, h)

	return c.Disconnect
}

// Disconnect closes the active connection and stops reconnecting.
// Safe to call when already disconnected.
func (c *Client) Disconnect() {
	c.mu.Lock()
	cancel, conn := c.cancel, c.conn
	if cancel == nil {
		c.mu.Unlock()
		return
	}
	c.cancel, c.conn = nil, nil
	c.generation++
	c.state = StateDisconnected
	c.mu.Unlock()

	cancel()
	if conn != nil {
		if err := conn.Close(); err != nil {
			log.Printf("[NOTIFICATIONS] Failed to close stream connection: %v", err)
		}
	}
	log.Println("[NOTIFICATIONS] Stream client disconnected")
}

// IsConnected reports whether a stream connection is currently open.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateConnected && c.conn != nil
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// run connects, reads until the stream closes, and reconnects with backoff.
// The attempt counter and delay reset whenever a frame is received.
func (c *Client) run(ctx context.Context, gen uint64, h Handlers) {
	attempts := 0
	delay := c.cfg.BaseDelay

	for {
		if !c.setState(gen, StateConnecting) {
			return
		}

		err := c.session(ctx, gen, h, &attempts, &delay)
		if ctx.Err() != nil {
			return
		}

		attempts++
		if attempts >= c.cfg.MaxAttempts {
			log.Printf("[NOTIFICATIONS] Giving up after %d consecutive failures: %v", attempts, err)
			if !c.setState(gen, StateGaveUp) {
				return
			}
			if h.OnError != nil {
				h.OnError(fmt.Errorf("%w (%d attempts): %v", ErrRetriesExhausted, attempts, err))
			}
			return
		}

		if !c.setState(gen, StateReconnecting) {
			return
		}
		log.Printf("[NOTIFICATIONS] Stream closed: %v. Reconnecting in %v (attempt %d/%d)",
			err, delay, attempts, c.cfg.MaxAttempts)
		if err := c.sleep(ctx, delay); err != nil {
			return
		}
		delay = c.cfg.NextDelay(delay)
	}
}

// session dials once and reads frames until the connection closes.
func (c *Client) session(ctx context.Context, gen uint64, h Handlers, attempts *int, delay *time.Duration) error {
	conn, err := c.transport.Dial(ctx, c.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	if !c.attach(gen, conn) {
		_ = conn.Close()
		return context.Canceled
	}
	defer c.detach(gen, conn)

	log.Printf("[NOTIFICATIONS] Connected to %s", c.cfg.URL)

	for {
		frame, err := conn.ReadFrame(ctx)
		if err != nil {
			if errors.Is(err, ErrTransient) && ctx.Err() == nil {
				log.Printf("[NOTIFICATIONS] Transient stream error: %v", err)
				continue
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		*attempts = 0
		*delay = c.cfg.BaseDelay

		c.dispatch(frame, h)
	}
}

func (c *Client) dispatch(frame Frame, h Handlers) {
	msg, err := Decode(frame)
	if err != nil {
		log.Printf("[NOTIFICATIONS] Failed to parse frame: %v", err)
		return
	}

	switch msg.Kind {
	case KindPost:
		if h.OnPost != nil {
			h.OnPost(*msg.Post)
		}
	case KindEvent:
		if h.OnEvent != nil {
			h.OnEvent(*msg.Event)
		}
	}
}

func (c *Client) setState(gen uint64, s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.state = s
	return true
}

func (c *Client) attach(gen uint64, conn Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.conn = conn
	c.state = StateConnected
	return true
}

func (c *Client) detach(gen uint64, conn Conn) {
	c.mu.Lock()
	if gen == c.generation && c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()

	if err := conn.Close(); err != nil {
		log.Printf("[NOTIFICATIONS] Failed to close stream connection: %v", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
