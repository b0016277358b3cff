package previews

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"
)

var (
	// ErrInvalidTimeout is returned when Timeout is not positive
	ErrInvalidTimeout = errors.New("Timeout must be positive")
	// ErrInvalidCacheTTL is returned when CacheTTL is not positive
	ErrInvalidCacheTTL = errors.New("CacheTTL must be positive")
)

// Config holds the preview resolver settings
type Config struct {
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration
	// MaxBodyBytes bounds how much of a page is read looking for meta tags
	MaxBodyBytes int64
	// FailureThreshold is the consecutive failures that open a provider's breaker
	FailureThreshold int
	// OpenDuration is how long an open breaker rejects calls
	OpenDuration time.Duration
	// AllowPrivateHosts permits loopback and private-network targets
	AllowPrivateHosts bool
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		UserAgent:        "MonitorBot/1.0",
		Timeout:          10 * time.Second,
		CacheTTL:         24 * time.Hour,
		MaxBodyBytes:     2 << 20,
		FailureThreshold: 3,
		OpenDuration:     5 * time.Minute,
	}
}

// Validate checks the configuration for invalid values
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CacheTTL <= 0 {
		return ErrInvalidCacheTTL
	}
	return nil
}

// ConfigFromEnv loads the config from environment variables, falling back
// to defaults for unset or invalid values
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("MONITOR_PREVIEW_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("MONITOR_PREVIEW_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Timeout = time.Duration(n) * time.Second
		} else {
			slog.Warn("[PREVIEWS] invalid MONITOR_PREVIEW_TIMEOUT_SECONDS, using default", "value", v, "default_seconds", int(cfg.Timeout.Seconds()))
		}
	}
	if v := os.Getenv("MONITOR_PREVIEW_CACHE_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheTTL = time.Duration(n) * time.Hour
		} else {
			slog.Warn("[PREVIEWS] invalid MONITOR_PREVIEW_CACHE_TTL_HOURS, using default", "value", v, "default_hours", int(cfg.CacheTTL.Hours()))
		}
	}

	return cfg
}
