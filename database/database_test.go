package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioverse/curio"
	"github.com/curioverse/curio/database"
)

func TestConnect(t *testing.T) {
	t.Run("sqlite provisions and connects", func(t *testing.T) {
		dsn := filepath.Join(t.TempDir(), "content.db")

		repo, cleanup, err := database.Connect(context.Background(), database.Config{
			Type: "sqlite",
			DSN:  dsn,
		})
		require.NoError(t, err)
		t.Cleanup(cleanup)
		require.NotNil(t, repo)

		// Schema was provisioned at connect time.
		rooms, err := repo.ListRooms(context.Background())
		require.NoError(t, err)
		assert.Empty(t, rooms)

		require.NoError(t, repo.InsertRoom(context.Background(), curio.Room{
			ID:    "r1",
			Slug:  "east-wing",
			Title: "East Wing",
		}))

		got, err := repo.GetRoomBySlug(context.Background(), "east-wing")
		require.NoError(t, err)
		assert.Equal(t, "East Wing", got.Title)
	})

	t.Run("none yields no repo", func(t *testing.T) {
		repo, cleanup, err := database.Connect(context.Background(), database.Config{Type: "none"})
		require.NoError(t, err)
		require.NotNil(t, cleanup)
		cleanup()
		assert.Nil(t, repo)
	})

	t.Run("empty type means none", func(t *testing.T) {
		repo, _, err := database.Connect(context.Background(), database.Config{})
		require.NoError(t, err)
		assert.Nil(t, repo)
	})

	t.Run("unsupported type errors", func(t *testing.T) {
		_, _, err := database.Connect(context.Background(), database.Config{Type: "oracle"})
		assert.Error(t, err)
	})
}
