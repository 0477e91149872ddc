package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id TEXT NOT NULL PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_locked BOOLEAN NOT NULL DEFAULT FALSE,
		model_url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id TEXT NOT NULL PRIMARY KEY,
		room_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		item_type TEXT NOT NULL,
		storage_key TEXT NOT NULL DEFAULT '',
		media_url TEXT NOT NULL DEFAULT '',
		transform TEXT NOT NULL DEFAULT '{}',
		is_objective BOOLEAN NOT NULL DEFAULT FALSE,
		objective_text TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS doors (
		id TEXT NOT NULL PRIMARY KEY,
		room_id TEXT NOT NULL,
		transform TEXT NOT NULL DEFAULT '{}',
		label TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS hub_settings (
		id TEXT NOT NULL PRIMARY KEY,
		model_url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS objectives (
		id TEXT NOT NULL PRIMARY KEY,
		room_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		item_id TEXT,
		sequence_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_room_created ON items (room_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_doors_room ON doors (room_id)`,
}

// Migrate provisions the content schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// DropTables removes the content schema.
func DropTables(ctx context.Context, pool *pgxpool.Pool) error {
	for _, table := range []string{"objectives", "hub_settings", "doors", "items", "rooms"} {
		if _, err := pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q`, table)); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
	}
	return nil
}
