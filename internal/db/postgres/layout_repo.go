package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"Monitor/internal/core/layout"

	"github.com/lib/pq"
)

type postgresLayoutRepo struct {
	db *sql.DB
}

// NewLayoutRepository creates a new PostgreSQL layout preference repository
func NewLayoutRepository(db *sql.DB) layout.Repository {
	return &postgresLayoutRepo{db: db}
}

// Get retrieves a client's preference by key
func (r *postgresLayoutRepo) Get(ctx context.Context, clientID, key string) (*layout.Preference, error) {
	query := `
		SELECT client_id, key, value, updated_at
		FROM layout_preferences
		WHERE client_id = $1 AND key = $2`

	pref := &layout.Preference{}
	err := r.db.QueryRowContext(ctx, query, clientID, key).
		Scan(&pref.ClientID, &pref.Key, pq.Array(&pref.Value), &pref.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, layout.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get layout preference: %w", err)
	}
	return pref, nil
}

// Upsert stores a preference, replacing any previous value for the same key
func (r *postgresLayoutRepo) Upsert(ctx context.Context, pref *layout.Preference) error {
	query := `
		INSERT INTO layout_preferences (client_id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, pref.ClientID, pref.Key, pq.Array(pref.Value)).
		Scan(&pref.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert layout preference: %w", err)
	}
	return nil
}

// Delete removes a preference
func (r *postgresLayoutRepo) Delete(ctx context.Context, clientID, key string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM layout_preferences WHERE client_id = $1 AND key = $2`, clientID, key)
	if err != nil {
		return fmt.Errorf("failed to delete layout preference: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return layout.ErrNotFound
	}
	return nil
}
