// Package database wires the configured store backend and returns a
// ready content repo.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/curioverse/curio"
	"github.com/curioverse/curio/database/postgres"
	"github.com/curioverse/curio/database/sqlite"

	_ "modernc.org/sqlite" // SQLite driver
)

// Config holds the configuration for connecting to a content store.
type Config struct {
	// Type specifies the backend: "sqlite", "postgres" or "none"
	Type string
	// DSN is the data source name (connection string)
	DSN string
}

// Connect establishes a connection to the configured backend, provisions
// the schema, and returns a ContentRepo. Type "none" yields a nil repo:
// the service runs without persistence and public reads degrade to empty
// results. The returned cleanup function closes the connection.
func Connect(ctx context.Context, cfg Config) (curio.ContentRepo, func(), error) {
	switch cfg.Type {
	case "sqlite":
		return connectSQLite(ctx, cfg.DSN)
	case "postgres":
		return connectPostgres(ctx, cfg.DSN)
	case "none", "":
		return nil, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

func connectSQLite(ctx context.Context, dsn string) (curio.ContentRepo, func(), error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err = sqlite.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return sqlite.NewRepo(db), cleanup, nil
}

func connectPostgres(ctx context.Context, dsn string) (curio.ContentRepo, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err = postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	return postgres.NewRepo(pool), pool.Close, nil
}
