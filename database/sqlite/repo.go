// Package sqlite implements the content repo over SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/curioverse/curio"
)

// timeLayout is RFC3339 with fixed-width nanoseconds. RFC3339Nano trims
// trailing fractional zeros, and created_at is a TEXT column sorted
// lexicographically, so variable-width values would not sort in
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	return Migrate(ctx, r.db)
}

func (r *Repo) ListRooms(ctx context.Context) ([]curio.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, slug, title, sort_order, is_locked, model_url
		FROM rooms
		ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rooms := []curio.Room{}
	for rows.Next() {
		var room curio.Room
		if err := rows.Scan(&room.ID, &room.Slug, &room.Title, &room.Order, &room.IsLocked, &room.ModelURL); err != nil {
			return nil, fmt.Errorf("list rooms: scan: %w", err)
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rooms: rows: %w", err)
	}

	return rooms, nil
}

func (r *Repo) GetRoomBySlug(ctx context.Context, slug string) (curio.Room, error) {
	var room curio.Room
	err := r.db.QueryRowContext(ctx,
		`SELECT id, slug, title, sort_order, is_locked, model_url
		FROM rooms
		WHERE slug = ?`, slug).
		Scan(&room.ID, &room.Slug, &room.Title, &room.Order, &room.IsLocked, &room.ModelURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return curio.Room{}, curio.ErrNotFound
		}
		return curio.Room{}, fmt.Errorf("get room by slug: %w", err)
	}

	return room, nil
}

func (r *Repo) ListItems(ctx context.Context, roomID string) ([]curio.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room_id, title, item_type, storage_key, media_url, transform,
			is_objective, objective_text, created_at
		FROM items
		WHERE room_id = ?
		ORDER BY created_at ASC`, roomID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []curio.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: rows: %w", err)
	}

	return items, nil
}

func (r *Repo) GetItem(ctx context.Context, id string) (curio.Item, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, room_id, title, item_type, storage_key, media_url, transform,
			is_objective, objective_text, created_at
		FROM items
		WHERE id = ?`, id)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return curio.Item{}, curio.ErrNotFound
		}
		return curio.Item{}, fmt.Errorf("get item: %w", err)
	}

	return item, nil
}

func (r *Repo) InsertRoom(ctx context.Context, room curio.Room) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (id, slug, title, sort_order, is_locked, model_url)
		VALUES (?, ?, ?, ?, ?, ?)`,
		room.ID, room.Slug, room.Title, room.Order, boolToInt(room.IsLocked), room.ModelURL)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

func (r *Repo) UpdateRoom(ctx context.Context, room curio.Room) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE rooms
		SET slug = ?, title = ?, sort_order = ?, is_locked = ?, model_url = ?
		WHERE id = ?`,
		room.Slug, room.Title, room.Order, boolToInt(room.IsLocked), room.ModelURL, room.ID)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

func (r *Repo) InsertItem(ctx context.Context, item curio.Item) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO items (id, room_id, title, item_type, storage_key, media_url,
			transform, is_objective, objective_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.RoomID, item.Title, item.Type, item.StorageKey, item.MediaURL,
		item.Transform.Encode(), boolToInt(item.IsObjective), item.ObjectiveText, now)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *Repo) UpdateItem(ctx context.Context, item curio.Item) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE items
		SET room_id = ?, title = ?, item_type = ?, storage_key = ?, media_url = ?,
			transform = ?, is_objective = ?, objective_text = ?
		WHERE id = ?`,
		item.RoomID, item.Title, item.Type, item.StorageKey, item.MediaURL,
		item.Transform.Encode(), boolToInt(item.IsObjective), item.ObjectiveText, item.ID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// DeleteRoom removes the room and its items in one transaction. A missing
// id still succeeds: delete is idempotent.
func (r *Repo) DeleteRoom(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete room: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE room_id = ?`, id); err != nil {
		return fmt.Errorf("delete room: items: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete room: commit: %w", err)
	}

	return nil
}

func (r *Repo) DeleteItem(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (r *Repo) ListDoors(ctx context.Context) ([]curio.Door, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT d.id, d.room_id, d.label, d.transform, r.slug
		FROM doors d
		LEFT JOIN rooms r ON d.room_id = r.id`)
	if err != nil {
		return nil, fmt.Errorf("list doors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	doors := []curio.Door{}
	for rows.Next() {
		var id, roomID, label, transform string
		var roomSlug sql.NullString
		if err := rows.Scan(&id, &roomID, &label, &transform, &roomSlug); err != nil {
			return nil, fmt.Errorf("list doors: scan: %w", err)
		}
		doors = append(doors, buildDoor(id, roomID, roomSlug.String, label, transform))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list doors: rows: %w", err)
	}

	return doors, nil
}

func (r *Repo) HubModelURL(ctx context.Context) (string, error) {
	var modelURL string
	err := r.db.QueryRowContext(ctx,
		`SELECT model_url FROM hub_settings WHERE id = 'main'`).Scan(&modelURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("hub model url: %w", err)
	}
	return modelURL, nil
}

// ReplaceHub writes the settings upsert and the door upserts in one
// transaction so the batch commits or fails as a unit.
func (r *Repo) ReplaceHub(ctx context.Context, modelURL *string, doors []curio.DoorRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace hub: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if modelURL != nil {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO hub_settings (id, model_url) VALUES ('main', ?)
			ON CONFLICT (id) DO UPDATE SET model_url = excluded.model_url`,
			*modelURL)
		if err != nil {
			return fmt.Errorf("replace hub: settings: %w", err)
		}
	}

	for _, d := range doors {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO doors (id, room_id, transform, label) VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				room_id = excluded.room_id,
				transform = excluded.transform,
				label = excluded.label`,
			d.ID, d.RoomID, d.Transform.Encode(), d.Label)
		if err != nil {
			return fmt.Errorf("replace hub: door %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace hub: commit: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (curio.Item, error) {
	var item curio.Item
	var transform, createdAt string

	err := row.Scan(&item.ID, &item.RoomID, &item.Title, &item.Type, &item.StorageKey,
		&item.MediaURL, &transform, &item.IsObjective, &item.ObjectiveText, &createdAt)
	if err != nil {
		return curio.Item{}, err
	}

	item.Transform = curio.DecodeTransform(transform)

	item.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return curio.Item{}, fmt.Errorf("parse created_at: %w", err)
	}

	return item, nil
}

func buildDoor(id, roomID, roomSlug, label, transform string) curio.Door {
	t := curio.DecodeTransform(transform)

	// Present the room's slug when the join found one; a dangling door
	// keeps its raw room id.
	targetRoom := roomSlug
	if targetRoom == "" {
		targetRoom = roomID
	}

	return curio.Door{
		ID:       id,
		RoomID:   targetRoom,
		Label:    label,
		Position: t.Position,
		Rotation: t.Rotation,
		Scale:    t.Scale,
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
