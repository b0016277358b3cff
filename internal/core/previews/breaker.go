package previews

import (
	"fmt"
	"log"
	"sync"
	"time"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

type providerHealth struct {
	lastFailure time.Time
	failures    int
	state       breakerState
}

// breaker stops calling a provider after consecutive failures. After the
// open period one trial call is let through; its outcome closes or reopens
// the breaker.
type breaker struct {
	now       func() time.Time
	providers map[string]*providerHealth
	threshold int
	open      time.Duration
	mu        sync.Mutex
}

func newBreaker(threshold int, open time.Duration) *breaker {
	if threshold <= 0 {
		threshold = 1
	}
	return &breaker{
		now:       time.Now,
		providers: make(map[string]*providerHealth),
		threshold: threshold,
		open:      open,
	}
}

// allow reports whether provider may be called now
func (b *breaker) allow(provider string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, ok := b.providers[provider]
	if !ok || h.state == breakerClosed {
		return nil
	}

	if h.state == breakerOpen {
		retryAt := h.lastFailure.Add(b.open)
		if b.now().Before(retryAt) {
			return fmt.Errorf("%w: %s (failures: %d, next retry: %s)",
				ErrProviderUnavailable, provider, h.failures, retryAt.Format("15:04:05"))
		}
		h.state = breakerHalfOpen
		log.Printf("[PREVIEWS] Breaker for %s is half-open, trying one call", provider)
		return nil
	}

	// Half-open: a trial call is already in flight
	return fmt.Errorf("%w: %s (trial call in progress)", ErrProviderUnavailable, provider)
}

func (b *breaker) success(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if h, ok := b.providers[provider]; ok {
		if h.state != breakerClosed {
			log.Printf("[PREVIEWS] Breaker for %s closed, provider recovered", provider)
		}
		delete(b.providers, provider)
	}
}

func (b *breaker) failure(provider string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, ok := b.providers[provider]
	if !ok {
		h = &providerHealth{}
		b.providers[provider] = h
	}
	h.failures++
	h.lastFailure = b.now()

	if h.state == breakerHalfOpen || h.failures >= b.threshold {
		if h.state != breakerOpen {
			log.Printf("[PREVIEWS] Opening breaker for %s after %d consecutive failures: %v", provider, h.failures, err)
		}
		h.state = breakerOpen
		return
	}
	log.Printf("[PREVIEWS] Failure %d/%d for %s: %v", h.failures, b.threshold, provider, err)
}

func (b *breaker) state(provider string) breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if h, ok := b.providers[provider]; ok {
		return h.state
	}
	return breakerClosed
}
