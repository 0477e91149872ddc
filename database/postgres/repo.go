// Package postgres implements the content repo over a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/curioverse/curio"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	return Migrate(ctx, r.pool)
}

func (r *Repo) ListRooms(ctx context.Context) ([]curio.Room, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, slug, title, sort_order, is_locked, model_url
		FROM rooms
		ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

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
	err := r.pool.QueryRow(ctx,
		`SELECT id, slug, title, sort_order, is_locked, model_url
		FROM rooms
		WHERE slug = $1`, slug).
		Scan(&room.ID, &room.Slug, &room.Title, &room.Order, &room.IsLocked, &room.ModelURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return curio.Room{}, curio.ErrNotFound
		}
		return curio.Room{}, fmt.Errorf("get room by slug: %w", err)
	}

	return room, nil
}

func (r *Repo) ListItems(ctx context.Context, roomID string) ([]curio.Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, room_id, title, item_type, storage_key, media_url, transform,
			is_objective, objective_text, created_at
		FROM items
		WHERE room_id = $1
		ORDER BY created_at ASC`, roomID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

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
	row := r.pool.QueryRow(ctx,
		`SELECT id, room_id, title, item_type, storage_key, media_url, transform,
			is_objective, objective_text, created_at
		FROM items
		WHERE id = $1`, id)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return curio.Item{}, curio.ErrNotFound
		}
		return curio.Item{}, fmt.Errorf("get item: %w", err)
	}

	return item, nil
}

func (r *Repo) InsertRoom(ctx context.Context, room curio.Room) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO rooms (id, slug, title, sort_order, is_locked, model_url)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		room.ID, room.Slug, room.Title, room.Order, room.IsLocked, room.ModelURL)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

func (r *Repo) UpdateRoom(ctx context.Context, room curio.Room) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE rooms
		SET slug = $1, title = $2, sort_order = $3, is_locked = $4, model_url = $5
		WHERE id = $6`,
		room.Slug, room.Title, room.Order, room.IsLocked, room.ModelURL, room.ID)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

func (r *Repo) InsertItem(ctx context.Context, item curio.Item) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO items (id, room_id, title, item_type, storage_key, media_url,
			transform, is_objective, objective_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, item.RoomID, item.Title, item.Type, item.StorageKey, item.MediaURL,
		item.Transform.Encode(), item.IsObjective, item.ObjectiveText)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *Repo) UpdateItem(ctx context.Context, item curio.Item) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE items
		SET room_id = $1, title = $2, item_type = $3, storage_key = $4, media_url = $5,
			transform = $6, is_objective = $7, objective_text = $8
		WHERE id = $9`,
		item.RoomID, item.Title, item.Type, item.StorageKey, item.MediaURL,
		item.Transform.Encode(), item.IsObjective, item.ObjectiveText, item.ID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// DeleteRoom removes the room and its items in one transaction. A missing
// id still succeeds: delete is idempotent.
func (r *Repo) DeleteRoom(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("delete room: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM items WHERE room_id = $1`, id); err != nil {
		return fmt.Errorf("delete room: items: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("delete room: commit: %w", err)
	}

	return nil
}

func (r *Repo) DeleteItem(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (r *Repo) ListDoors(ctx context.Context) ([]curio.Door, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT d.id, d.room_id, d.label, d.transform, r.slug
		FROM doors d
		LEFT JOIN rooms r ON d.room_id = r.id`)
	if err != nil {
		return nil, fmt.Errorf("list doors: %w", err)
	}
	defer rows.Close()

	doors := []curio.Door{}
	for rows.Next() {
		var id, roomID, label, transform string
		var roomSlug *string
		if err := rows.Scan(&id, &roomID, &label, &transform, &roomSlug); err != nil {
			return nil, fmt.Errorf("list doors: scan: %w", err)
		}

		t := curio.DecodeTransform(transform)
		targetRoom := roomID
		if roomSlug != nil && *roomSlug != "" {
			targetRoom = *roomSlug
		}

		doors = append(doors, curio.Door{
			ID:       id,
			RoomID:   targetRoom,
			Label:    label,
			Position: t.Position,
			Rotation: t.Rotation,
			Scale:    t.Scale,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list doors: rows: %w", err)
	}

	return doors, nil
}

func (r *Repo) HubModelURL(ctx context.Context) (string, error) {
	var modelURL string
	err := r.pool.QueryRow(ctx,
		`SELECT model_url FROM hub_settings WHERE id = 'main'`).Scan(&modelURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("hub model url: %w", err)
	}
	return modelURL, nil
}

// ReplaceHub writes the settings upsert and the door upserts in one
// transaction so the batch commits or fails as a unit.
func (r *Repo) ReplaceHub(ctx context.Context, modelURL *string, doors []curio.DoorRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("replace hub: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if modelURL != nil {
		_, err := tx.Exec(ctx,
			`INSERT INTO hub_settings (id, model_url) VALUES ('main', $1)
			ON CONFLICT (id) DO UPDATE SET model_url = EXCLUDED.model_url`,
			*modelURL)
		if err != nil {
			return fmt.Errorf("replace hub: settings: %w", err)
		}
	}

	for _, d := range doors {
		_, err := tx.Exec(ctx,
			`INSERT INTO doors (id, room_id, transform, label) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				room_id = EXCLUDED.room_id,
				transform = EXCLUDED.transform,
				label = EXCLUDED.label`,
			d.ID, d.RoomID, d.Transform.Encode(), d.Label)
		if err != nil {
			return fmt.Errorf("replace hub: door %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("replace hub: commit: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (curio.Item, error) {
	var item curio.Item
	var transform string

	err := row.Scan(&item.ID, &item.RoomID, &item.Title, &item.Type, &item.StorageKey,
		&item.MediaURL, &transform, &item.IsObjective, &item.ObjectiveText, &item.CreatedAt)
	if err != nil {
		return curio.Item{}, err
	}

	item.Transform = curio.DecodeTransform(transform)
	return item, nil
}
