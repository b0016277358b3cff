package notifications

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config validation errors
var (
	// ErrMissingURL is returned when the notifications endpoint is empty
	ErrMissingURL = errors.New("notifications URL is required")
	// ErrInvalidBaseDelay is returned when BaseDelay is not positive
	ErrInvalidBaseDelay = errors.New("BaseDelay must be positive")
	// ErrInvalidMaxDelay is returned when MaxDelay is below BaseDelay
	ErrInvalidMaxDelay = errors.New("MaxDelay must not be below BaseDelay")
	// ErrInvalidMultiplier is returned when Multiplier does not grow the delay
	ErrInvalidMultiplier = errors.New("Multiplier must be greater than 1")
	// ErrInvalidMaxAttempts is returned when MaxAttempts is not positive
	ErrInvalidMaxAttempts = errors.New("MaxAttempts must be positive")
)

// Config holds the stream client's endpoint and reconnect policy.
type Config struct {
	// URL is the push-stream endpoint. ws:// and wss:// select the WebSocket
	// transport, anything else is read as Server-Sent Events.
	URL string

	// BaseDelay is the wait before the first reconnect attempt.
	BaseDelay time.Duration

	// MaxDelay caps the reconnect delay.
	MaxDelay time.Duration

	// Multiplier grows the delay after every failed attempt.
	Multiplier float64

	// MaxAttempts is the number of consecutive connection failures after
	// which the client gives up and reports ErrRetriesExhausted.
	MaxAttempts int
}

// DefaultConfig returns a Config with the default reconnect policy:
// 1s base delay growing by 1.5x up to 30s, giving up after 10 failures.
func DefaultConfig() Config {
	return Config{
		URL:         "http://localhost:3000/notifications",
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  1.5,
		MaxAttempts: 10,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.URL == "" {
		return ErrMissingURL
	}
	if c.BaseDelay <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidBaseDelay, c.BaseDelay)
	}
	if c.MaxDelay < c.BaseDelay {
		return fmt.Errorf("%w: got %v < %v", ErrInvalidMaxDelay, c.MaxDelay, c.BaseDelay)
	}
	if c.Multiplier <= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidMultiplier, c.Multiplier)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxAttempts, c.MaxAttempts)
	}
	return nil
}

// NextDelay returns the delay to use after d: d grown by Multiplier, capped at MaxDelay.
func (c Config) NextDelay(d time.Duration) time.Duration {
	next := time.Duration(float64(d) * c.Multiplier)
	if next > c.MaxDelay {
		return c.MaxDelay
	}
	return next
}

// ConfigFromEnv creates a Config from environment variables.
// Uses defaults for any missing environment variables.
//
// Environment variables:
//   - MONITOR_NOTIFICATIONS_URL: push-stream endpoint (default: "http://localhost:3000/notifications")
//   - MONITOR_RECONNECT_BASE_MS: first reconnect delay in milliseconds (default: 1000)
//   - MONITOR_RECONNECT_MAX_MS: reconnect delay ceiling in milliseconds (default: 30000)
//   - MONITOR_RECONNECT_MULTIPLIER: delay growth factor (default: 1.5)
//   - MONITOR_RECONNECT_MAX_ATTEMPTS: consecutive failures before giving up (default: 10)
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("MONITOR_NOTIFICATIONS_URL"); v != "" {
		cfg.URL = v
	}

	if v := os.Getenv("MONITOR_RECONNECT_BASE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BaseDelay = time.Duration(n) * time.Millisecond
		} else {
			slog.Warn("[NOTIFICATIONS] invalid MONITOR_RECONNECT_BASE_MS value, using default",
				"value", v,
				"default_ms", cfg.BaseDelay.Milliseconds(),
				"error", err,
			)
		}
	}

	if v := os.Getenv("MONITOR_RECONNECT_MAX_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxDelay = time.Duration(n) * time.Millisecond
		} else {
			slog.Warn("[NOTIFICATIONS] invalid MONITOR_RECONNECT_MAX_MS value, using default",
				"value", v,
				"default_ms", cfg.MaxDelay.Milliseconds(),
				"error", err,
			)
		}
	}

	if v := os.Getenv("MONITOR_RECONNECT_MULTIPLIER"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 1 {
			cfg.Multiplier = f
		} else {
			slog.Warn("[NOTIFICATIONS] invalid MONITOR_RECONNECT_MULTIPLIER value, using default",
				"value", v,
				"default", cfg.Multiplier,
				"error", err,
			)
		}
	}

	if v := os.Getenv("MONITOR_RECONNECT_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxAttempts = n
		} else {
			slog.Warn("[NOTIFICATIONS] invalid MONITOR_RECONNECT_MAX_ATTEMPTS value, using default",
				"value", v,
				"default", cfg.MaxAttempts,
				"error", err,
			)
		}
	}

	return cfg
}
