// Package storage archives terminal missions and session summaries in a
// local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the SQLite handle.
type DB struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at path and applies pending
// migrations. Use ":memory:" for an ephemeral database.
func Open(ctx context.Context, logger *slog.Logger, path string) (*DB, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	// A desktop tool has exactly one writer; a single connection sidesteps
	// SQLITE_BUSY entirely.
	handle.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA foreign_keys = ON`,
	} {
		if _, err := handle.ExecContext(ctx, pragma); err != nil {
			handle.Close()
			return nil, fmt.Errorf("storage: %s: %w", pragma, err)
		}
	}

	db := &DB{db: handle, logger: logger.With("component", "storage")}

	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		handle.Close()
		return nil, fmt.Errorf("storage: migrations fs: %w", err)
	}
	if err := db.RunMigrations(ctx, sub); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the database handle.
func (db *DB) Close() error {
	return db.db.Close()
}
