package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioverse/curio"
)

func TestRepo_Rooms(t *testing.T) {
	t.Run("insert and get by slug", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

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
		repo := setupTestRepo(t)

		_, err := repo.GetRoomBySlug(context.Background(), "ghost")
		assert.ErrorIs(t, err, curio.ErrNotFound)
	})

	t.Run("list orders by sort order", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		insertTestRoom(t, repo, "third", 3)
		insertTestRoom(t, repo, "first", 1)
		insertTestRoom(t, repo, "second", 2)

		rooms, err := repo.ListRooms(ctx)
		require.NoError(t, err)
		require.Len(t, rooms, 3)
		assert.Equal(t, "first", rooms[0].Slug)
		assert.Equal(t, "second", rooms[1].Slug)
		assert.Equal(t, "third", rooms[2].Slug)
	})

	t.Run("empty store lists empty slice", func(t *testing.T) {
		repo := setupTestRepo(t)

		rooms, err := repo.ListRooms(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, rooms)
		assert.Empty(t, rooms)
	})

	t.Run("update overwrites mutable fields", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		room := insertTestRoom(t, repo, "east-wing", 1)
		room.Title = "Renamed"
		room.IsLocked = true
		room.Order = 9
		require.NoError(t, repo.UpdateRoom(ctx, room))

		got, err := repo.GetRoomBySlug(ctx, "east-wing")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.True(t, got.IsLocked)
		assert.Equal(t, 9, got.Order)
	})

	t.Run("update of missing id is a no-op", func(t *testing.T) {
		repo := setupTestRepo(t)

		err := repo.UpdateRoom(context.Background(), curio.Room{ID: "ghost", Slug: "g", Title: "G"})
		assert.NoError(t, err)
	})

	t.Run("duplicate slug rejected", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		insertTestRoom(t, repo, "east-wing", 1)

		err := repo.InsertRoom(ctx, curio.Room{ID: "other", Slug: "east-wing", Title: "Dup"})
		assert.Error(t, err)
	})
}

func TestRepo_Items(t *testing.T) {
	t.Run("insert stamps creation time", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		room := insertTestRoom(t, repo, "east-wing", 1)
		item := insertTestItem(t, repo, room.ID)

		got, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.ID, got.ID)
		assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
	})

	t.Run("transform round trips", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		room := insertTestRoom(t, repo, "east-wing", 1)
		item := curio.Item{
			ID:     "i1",
			RoomID: room.ID,
			Type:   "model",
			Transform: curio.Transform{
				Position: curio.Vec3{X: 1, Y: 2, Z: 3},
				Rotation: curio.Vec3{Y: 90},
				Scale:    curio.Vec3{X: 2, Y: 2, Z: 2},
			},
		}
		require.NoError(t, repo.InsertItem(ctx, item))

		got, err := repo.GetItem(ctx, "i1")
		require.NoError(t, err)
		assert.Equal(t, item.Transform, got.Transform)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		repo := setupTestRepo(t)

		_, err := repo.GetItem(context.Background(), "ghost")
		assert.ErrorIs(t, err, curio.ErrNotFound)
	})

	t.Run("list is scoped to room in creation order", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		east := insertTestRoom(t, repo, "east-wing", 1)
		west := insertTestRoom(t, repo, "west-wing", 2)

		first := insertTestItem(t, repo, east.ID)
		time.Sleep(2 * time.Millisecond)
		second := insertTestItem(t, repo, east.ID)
		insertTestItem(t, repo, west.ID)

		items, err := repo.ListItems(ctx, east.ID)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, first.ID, items[0].ID)
		assert.Equal(t, second.ID, items[1].ID)
	})

	t.Run("update overwrites mutable fields", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		room := insertTestRoom(t, repo, "east-wing", 1)
		item := insertTestItem(t, repo, room.ID)

		item.Title = "Renamed"
		item.IsObjective = true
		item.ObjectiveText = "Find the bust"
		require.NoError(t, repo.UpdateItem(ctx, item))

		got, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.True(t, got.IsObjective)
		assert.Equal(t, "Find the bust", got.ObjectiveText)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		room := insertTestRoom(t, repo, "east-wing", 1)
		item := insertTestItem(t, repo, room.ID)

		require.NoError(t, repo.DeleteItem(ctx, item.ID))
		require.NoError(t, repo.DeleteItem(ctx, item.ID))

		_, err := repo.GetItem(ctx, item.ID)
		assert.ErrorIs(t, err, curio.ErrNotFound)
	})

	t.Run("created_at stored fixed width", func(t *testing.T) {
		repo, db := setupTestDB(t)
		ctx := context.Background()

		room := insertTestRoom(t, repo, "east-wing", 1)
		item := insertTestItem(t, repo, room.ID)

		var created string
		err := db.QueryRowContext(ctx,
			`SELECT created_at FROM items WHERE id = ?`, item.ID).Scan(&created)
		require.NoError(t, err)

		// A timestamp landing on an exact second must not shrink, or the
		// lexicographic ORDER BY stops being chronological.
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{9}Z$`, created)
	})

	t.Run("exact-second timestamps still sort chronologically", func(t *testing.T) {
		repo, db := setupTestDB(t)
		ctx := context.Background()

		room := insertTestRoom(t, repo, "east-wing", 1)

		rows := []struct{ id, created string }{
			{"i-whole", "2025-01-01T12:00:01.000000000Z"},
			{"i-frac", "2025-01-01T12:00:01.500000000Z"},
			{"i-next", "2025-01-01T12:00:02.000000000Z"},
		}
		for _, row := range rows {
			_, err := db.ExecContext(ctx,
				`INSERT INTO items (id, room_id, item_type, created_at) VALUES (?, ?, 'model', ?)`,
				row.id, room.ID, row.created)
			require.NoError(t, err)
		}

		items, err := repo.ListItems(ctx, room.ID)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "i-whole", items[0].ID)
		assert.Equal(t, "i-frac", items[1].ID)
		assert.Equal(t, "i-next", items[2].ID)
	})
}

func TestRepo_DeleteRoom(t *testing.T) {
	t.Run("cascades to items", func(t *testing.T) {
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
	})

	t.Run("missing id succeeds", func(t *testing.T) {
		repo := setupTestRepo(t)

		assert.NoError(t, repo.DeleteRoom(context.Background(), "ghost"))
	})
}

func TestRepo_Hub(t *testing.T) {
	t.Run("model url empty when unset", func(t *testing.T) {
		repo := setupTestRepo(t)

		url, err := repo.HubModelURL(context.Background())
		require.NoError(t, err)
		assert.Empty(t, url)
	})

	t.Run("replace writes settings and doors", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

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
		assert.Equal(t, "d1", got[0].ID)
		assert.Equal(t, "east-wing", got[0].RoomID)
		assert.Equal(t, "East", got[0].Label)
		assert.Equal(t, curio.Vec3{X: 5}, got[0].Position)
		assert.Equal(t, curio.Vec3{X: 1, Y: 1, Z: 1}, got[0].Scale)
	})

	t.Run("nil model url leaves settings untouched", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		first := "https://cdn.example.com/hub.glb"
		require.NoError(t, repo.ReplaceHub(ctx, &first, nil))
		require.NoError(t, repo.ReplaceHub(ctx, nil, []curio.DoorRecord{{ID: "d1", RoomID: "r1"}}))

		url, err := repo.HubModelURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, url)
	})

	t.Run("door upsert overwrites existing", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.ReplaceHub(ctx, nil, []curio.DoorRecord{{ID: "d1", RoomID: "r1", Label: "Old"}}))
		require.NoError(t, repo.ReplaceHub(ctx, nil, []curio.DoorRecord{{ID: "d1", RoomID: "r2", Label: "New"}}))

		doors, err := repo.ListDoors(ctx)
		require.NoError(t, err)
		require.Len(t, doors, 1)
		assert.Equal(t, "New", doors[0].Label)
	})

	t.Run("dangling door keeps its raw room id", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.ReplaceHub(ctx, nil, []curio.DoorRecord{{ID: "d1", RoomID: "gone-room"}}))

		doors, err := repo.ListDoors(ctx)
		require.NoError(t, err)
		require.Len(t, doors, 1)
		assert.Equal(t, "gone-room", doors[0].RoomID)
	})

	t.Run("doors absent from the batch are not pruned", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.ReplaceHub(ctx, nil, []curio.DoorRecord{{ID: "d1", RoomID: "r1"}}))
		require.NoError(t, repo.ReplaceHub(ctx, nil, []curio.DoorRecord{{ID: "d2", RoomID: "r2"}}))

		doors, err := repo.ListDoors(ctx)
		require.NoError(t, err)
		assert.Len(t, doors, 2)
	})
}

func TestRepo_EnsureSchemaIdempotent(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx))

	insertTestRoom(t, repo, "east-wing", 1)
	require.NoError(t, repo.EnsureSchema(ctx))

	rooms, err := repo.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}
