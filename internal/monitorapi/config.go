package monitorapi

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds the monitor API client settings.
type Config struct {
	// BaseURL is the API root, without a trailing slash
	BaseURL string

	// Token is a static bearer token. Ignored when TokenFile is set.
	Token string

	// TokenFile is a file holding the current session token. It is re-read
	// on every request so the session provider can rotate it.
	TokenFile string

	// Timeout bounds each request
	Timeout time.Duration

	// RequestsPerSecond throttles outbound requests
	RequestsPerSecond float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "http://localhost:3000",
		Timeout:           30 * time.Second,
		RequestsPerSecond: 5,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	return nil
}

// TokenSource returns the token source the configuration describes.
// No token configured yields an empty static token, so requests go out
// unauthenticated.
func (c Config) TokenSource() TokenSource {
	if c.TokenFile != "" {
		return NewFileTokenSource(c.TokenFile)
	}
	return StaticToken(c.Token)
}

// ConfigFromEnv creates a Config from environment variables.
// Uses defaults for any missing environment variables.
//
// Environment variables:
//   - MONITOR_API_URL: API root (default: "http://localhost:3000")
//   - MONITOR_API_TOKEN: static bearer token (default: none)
//   - MONITOR_API_TOKEN_FILE: file holding the session token (default: none)
//   - MONITOR_API_TIMEOUT_SECONDS: per-request timeout (default: 30)
//   - MONITOR_API_RPS: outbound requests per second (default: 5)
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("MONITOR_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	cfg.Token = os.Getenv("MONITOR_API_TOKEN")
	cfg.TokenFile = os.Getenv("MONITOR_API_TOKEN_FILE")

	if v := os.Getenv("MONITOR_API_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Timeout = time.Duration(n) * time.Second
		} else {
			slog.Warn("[MONITORAPI] invalid MONITOR_API_TIMEOUT_SECONDS value, using default",
				"value", v,
				"default", cfg.Timeout,
				"error", err,
			)
		}
	}

	if v := os.Getenv("MONITOR_API_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.RequestsPerSecond = f
		} else {
			slog.Warn("[MONITORAPI] invalid MONITOR_API_RPS value, using default",
				"value", v,
				"default", cfg.RequestsPerSecond,
				"error", err,
			)
		}
	}

	return cfg
}
