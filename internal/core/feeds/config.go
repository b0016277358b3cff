package feeds

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"Monitor/internal/core/posts"
)

// Config validation errors
var (
	// ErrInvalidPageSize is returned when PageSize is not positive
	ErrInvalidPageSize = errors.New("PageSize must be positive")
	// ErrInvalidRelevantThreshold is returned when RelevantThreshold is not positive
	ErrInvalidRelevantThreshold = errors.New("RelevantThreshold must be positive")
	// ErrInvalidConcurrency is returned when InitialFetchConcurrency is not positive
	ErrInvalidConcurrency = errors.New("InitialFetchConcurrency must be positive")
)

// Config holds the synchronizer settings.
type Config struct {
	// PageSize is the number of posts requested per fetch. A page shorter
	// than this ends pagination for the category.
	PageSize int

	// RelevantThreshold is the minimum relevance for the relevant category.
	RelevantThreshold int

	// InitialFetchConcurrency bounds the concurrent fetches during Initialize.
	InitialFetchConcurrency int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PageSize:                50,
		RelevantThreshold:       posts.RelevanceThreshold,
		InitialFetchConcurrency: 7,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, c.PageSize)
	}
	if c.RelevantThreshold <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidRelevantThreshold, c.RelevantThreshold)
	}
	if c.InitialFetchConcurrency <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidConcurrency, c.InitialFetchConcurrency)
	}
	return nil
}

// withDefaults replaces non-positive fields with their defaults
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.PageSize <= 0 {
		c.PageSize = def.PageSize
	}
	if c.RelevantThreshold <= 0 {
		c.RelevantThreshold = def.RelevantThreshold
	}
	if c.InitialFetchConcurrency <= 0 {
		c.InitialFetchConcurrency = def.InitialFetchConcurrency
	}
	return c
}

// ConfigFromEnv creates a Config from environment variables.
// Uses defaults for any missing environment variables.
//
// Environment variables:
//   - MONITOR_PAGE_SIZE: posts per fetch (default: 50)
//   - MONITOR_RELEVANT_THRESHOLD: minimum relevance of the relevant category (default: 4)
//   - MONITOR_INITIAL_FETCH_CONCURRENCY: concurrent fetches at startup (default: 7)
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.PageSize = positiveIntFromEnv("MONITOR_PAGE_SIZE", cfg.PageSize)
	cfg.RelevantThreshold = positiveIntFromEnv("MONITOR_RELEVANT_THRESHOLD", cfg.RelevantThreshold)
	cfg.InitialFetchConcurrency = positiveIntFromEnv("MONITOR_INITIAL_FETCH_CONCURRENCY", cfg.InitialFetchConcurrency)

	return cfg
}

func positiveIntFromEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("[FEEDS] invalid "+key+" value, using default",
			"value", v,
			"default", def,
			"error", err,
		)
		return def
	}
	return n
}
