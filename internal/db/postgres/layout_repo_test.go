package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"Monitor/internal/core/layout"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupLayoutTestDB connects to TEST_DATABASE_URL and runs migrations
func setupLayoutTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping postgres tests")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(db, "../migrations"), "Failed to run migrations")

	return db
}

func cleanupLayoutData(t *testing.T, db *sql.DB, clientID string) {
	_, err := db.Exec("DELETE FROM layout_preferences WHERE client_id = $1", clientID)
	require.NoError(t, err)
}

func TestLayoutRepo_UpsertAndGet(t *testing.T) {
	db := setupLayoutTestDB(t)
	defer func() { _ = db.Close() }()

	clientID := "test-client-upsert"
	cleanupLayoutData(t, db, clientID)
	defer cleanupLayoutData(t, db, clientID)

	repo := NewLayoutRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, clientID, layout.ColumnOrderKey)
	assert.ErrorIs(t, err, layout.ErrNotFound)

	first := &layout.Preference{ClientID: clientID, Key: layout.ColumnOrderKey, Value: []string{"all", "weather"}}
	require.NoError(t, repo.Upsert(ctx, first))
	assert.False(t, first.UpdatedAt.IsZero())

	second := &layout.Preference{ClientID: clientID, Key: layout.ColumnOrderKey, Value: []string{"weather", "all"}}
	require.NoError(t, repo.Upsert(ctx, second))

	got, err := repo.Get(ctx, clientID, layout.ColumnOrderKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"weather", "all"}, got.Value)
	assert.False(t, got.UpdatedAt.Before(first.UpdatedAt))
}

func TestLayoutRepo_Delete(t *testing.T) {
	db := setupLayoutTestDB(t)
	defer func() { _ = db.Close() }()

	clientID := "test-client-delete"
	cleanupLayoutData(t, db, clientID)
	defer cleanupLayoutData(t, db, clientID)

	repo := NewLayoutRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &layout.Preference{ClientID: clientID, Key: layout.ColumnOrderKey, Value: []string{"all"}}))
	require.NoError(t, repo.Delete(ctx, clientID, layout.ColumnOrderKey))
	assert.ErrorIs(t, repo.Delete(ctx, clientID, layout.ColumnOrderKey), layout.ErrNotFound)
}

func TestLayoutRepo_ServiceRoundTrip(t *testing.T) {
	db := setupLayoutTestDB(t)
	defer func() { _ = db.Close() }()

	clientID := "test-client-service"
	cleanupLayoutData(t, db, clientID)
	defer cleanupLayoutData(t, db, clientID)

	svc := layout.NewLayoutService(NewLayoutRepository(db))
	ctx := context.Background()

	order := []string{"technology", "weather", "all", "relevant", "business", "world", "politics"}
	_, err := svc.SaveColumnOrder(ctx, clientID, order)
	require.NoError(t, err)

	got, err := svc.GetColumnOrder(ctx, clientID)
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.Equal(t, "technology", string(got[0]))
}
