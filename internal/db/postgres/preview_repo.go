package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Monitor/internal/core/previews"
)

type postgresPreviewRepo struct {
	db *sql.DB
}

// NewPreviewRepository creates a new PostgreSQL link preview cache
func NewPreviewRepository(db *sql.DB) previews.Repository {
	return &postgresPreviewRepo{db: db}
}

// Get returns the unexpired preview cached for url
func (r *postgresPreviewRepo) Get(ctx context.Context, url string) (*previews.Result, error) {
	query := `
		SELECT metadata, provider
		FROM link_previews
		WHERE url = $1 AND expires_at > NOW()`

	var (
		metadata []byte
		provider string
	)
	err := r.db.QueryRowContext(ctx, query, url).Scan(&metadata, &provider)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, previews.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link preview: %w", err)
	}

	var result previews.Result
	if err := json.Unmarshal(metadata, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal link preview: %w", err)
	}
	result.Provider = provider
	return &result, nil
}

// Set caches result for url until now + ttl
func (r *postgresPreviewRepo) Set(ctx context.Context, url string, result *previews.Result, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("invalid preview TTL %s", ttl)
	}

	metadata, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal link preview: %w", err)
	}

	query := `
		INSERT INTO link_previews (url, provider, metadata, expires_at)
		VALUES ($1, $2, $3, NOW() + make_interval(secs => $4))
		ON CONFLICT (url) DO UPDATE
		SET provider = EXCLUDED.provider,
		    metadata = EXCLUDED.metadata,
		    expires_at = EXCLUDED.expires_at,
		    fetched_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, url, result.Provider, metadata, ttl.Seconds()); err != nil {
		return fmt.Errorf("failed to store link preview: %w", err)
	}
	return nil
}
