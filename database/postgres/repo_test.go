package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioverse/curio"
)

func TestRepo_Rooms(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	t.Run("insert and get by slug", func(t *testing.T) {
		want := curio.Room{
			ID:       "r1",
			Slug:     "east-wing",
			Title:    "East Wing",
			Order:    2,
			IsLocked: true,
			ModelURL: "https://cdn.example.com/east.glb",
		}
		require.NoError(t, repo.InsertRoom(ctx, want))

		got, err := repo.GetRoomBySlug(ctx, "east-wing")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("unknown slug is not found", func(t *testing.T) {
		_, err := repo.GetRoomBySlug(ctx, "ghost")
		assert.ErrorIs(t, err, curio.ErrNotFound)
	})

	t.Run("list orders by sort order", func(t *testing.T) {
		insertTestRoom(t, repo, "first", 1)
		insertTestRoom(t, repo, "third", 3)

		rooms, err := repo.ListRooms(ctx)
		require.NoError(t, err)
		require.Len(t, rooms, 3)
		assert.Equal(t, "first", rooms[0].Slug)
		assert.Equal(t, "east-wing", rooms[1].Slug)
		assert.Equal(t, "third", rooms[2].Slug)
	})

	t.Run("update overwrites mutable fields", func(t *testing.T) {
		err := repo.UpdateRoom(ctx, curio.Room{
			ID:    "r1",
			Slug:  "east-wing",
			Title: "Renamed",
			Order: 9,
		})
		require.NoError(t, err)

		got, err := repo.GetRoomBySlug(ctx, "east-wing")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, 9, got.Order)
		assert.False(t, got.IsLocked)
	})
}

func TestRepo_Items(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	room := insertTestRoom(t, repo, "east-wing", 1)

	t.Run("insert stamps creation time", func(t *testing.T) {
		item := insertTestItem(t, repo, room.ID)

		got, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
	})

	t.Run("transform round trips", func(t *testing.T) {
		item := curio.Item{
			ID:     "i-transform",
			RoomID: room.ID,
			Type:   "model",
			Transform: curio.Transform{
				Position: curio.Vec3{X: 1, Y: 2, Z: 3},
				Rotation: curio.Vec3{Y: 90},
				Scale:    curio.Vec3{X: 2, Y: 2, Z: 2},
			},
		}
		require.NoError(t, repo.InsertItem(ctx, item))

		got, err := repo.GetItem(ctx, "i-transform")
		require.NoError(t, err)
		assert.Equal(t, item.Transform, got.Transform)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := repo.GetItem(ctx, "ghost")
		assert.ErrorIs(t, err, curio.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		item := insertTestItem(t, repo, room.ID)

		require.NoError(t, repo.DeleteItem(ctx, item.ID))
		require.NoError(t, repo.DeleteItem(ctx, item.ID))
	})
}

func TestRepo_DeleteRoomCascades(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	room := insertTestRoom(t, repo, "east-wing", 1)
	item := insertTestItem(t, repo, room.ID)
	other := insertTestRoom(t, repo, "west-wing", 2)
	kept := insertTestItem(t, repo, other.ID)

	require.NoError(t, repo.DeleteRoom(ctx, room.ID))

	_, err := repo.GetRoomBySlug(ctx, "east-wing")
	assert.ErrorIs(t, err, curio.ErrNotFound)

	_, err = repo.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, curio.ErrNotFound)

	_, err = repo.GetItem(ctx, kept.ID)
	assert.NoError(t, err)

	assert.NoError(t, repo.DeleteRoom(ctx, "ghost"))
}

func TestRepo_Hub(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	t.Run("model url empty when unset", func(t *testing.T) {
		url, err := repo.HubModelURL(ctx)
		require.NoError(t, err)
		assert.Empty(t, url)
	})

	t.Run("replace writes settings and doors", func(t *testing.T) {
		room := insertTestRoom(t, repo, "east-wing", 1)
		modelURL := "https://cdn.example.com/hub.glb"
		doors := []curio.DoorRecord{{
			ID:     "d1",
			RoomID: room.ID,
			Label:  "East",
			Transform: curio.Transform{
				Position: curio.Vec3{X: 5},
				Scale:    curio.Vec3{X: 1, Y: 1, Z: 1},
			},
		}}

		require.NoError(t, repo.ReplaceHub(ctx, &modelURL, doors))

		url, err := repo.HubModelURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, modelURL, url)

		got, err := repo.ListDoors(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "east-wing", got[0].RoomID)
		assert.Equal(t, curio.Vec3{X: 5}, got[0].Position)
	})

	t.Run("door upsert overwrites existing", func(t *testing.T) {
		require.NoError(t, repo.ReplaceHub(ctx, nil, []curio.DoorRecord{{ID: "d1", RoomID: "gone", Label: "New"}}))

		doors, err := repo.ListDoors(ctx)
		require.NoError(t, err)
		require.Len(t, doors, 1)
		assert.Equal(t, "New", doors[0].Label)
		assert.Equal(t, "gone", doors[0].RoomID)
	})
}
