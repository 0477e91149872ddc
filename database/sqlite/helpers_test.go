package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/curioverse/curio"
	"github.com/curioverse/curio/database/sqlite"

	_ "modernc.org/sqlite"
)

// setupTestDB opens a fresh in-memory database with the schema
// provisioned. Each test gets its own database.
func setupTestDB(t *testing.T) (*sqlite.Repo, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "open sqlite")

	// An in-memory database exists per connection; keep the pool at one
	// so every query sees the same database.
	db.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlite.Migrate(context.Background(), db), "migrate")

	return sqlite.NewRepo(db), db
}

func setupTestRepo(t *testing.T) *sqlite.Repo {
	t.Helper()
	repo, _ := setupTestDB(t)
	return repo
}

func insertTestRoom(t *testing.T, repo *sqlite.Repo, slug string, order int) curio.Room {
	t.Helper()

	room := curio.Room{
		ID:    uuid.NewString(),
		Slug:  slug,
		Title: "Room " + slug,
		Order: order,
	}
	require.NoError(t, repo.InsertRoom(context.Background(), room))
	return room
}

func insertTestItem(t *testing.T, repo *sqlite.Repo, roomID string) curio.Item {
	t.Helper()

	item := curio.Item{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Title:     "Item",
		Type:      "model",
		Transform: curio.DefaultTransform(),
	}
	require.NoError(t, repo.InsertItem(context.Background(), item))
	return item
}
