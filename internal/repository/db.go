package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS certificate_files (
		id           TEXT PRIMARY KEY,
		source_path  TEXT NOT NULL,
		content_hash BLOB NOT NULL UNIQUE,
		filename     TEXT NOT NULL,
		file_ext     TEXT NOT NULL,
		file_size    INTEGER NOT NULL,
		uploaded_at  TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS extract_jobs (
		id            TEXT PRIMARY KEY,
		file_id       TEXT NOT NULL REFERENCES certificate_files(id),
		format        TEXT NOT NULL,
		started_at    TIMESTAMP NOT NULL,
		finished_at   TIMESTAMP,
		status        TEXT,
		error_message TEXT,
		fetch_method  TEXT,
		raw_text      TEXT,
		fragment_json TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_extract_jobs_file ON extract_jobs(file_id)`,
	`CREATE TABLE IF NOT EXISTS annotations (
		certificate_id TEXT PRIMARY KEY,
		checked        INTEGER NOT NULL DEFAULT 0,
		flagged        INTEGER NOT NULL DEFAULT 0,
		note           TEXT NOT NULL DEFAULT '',
		updated_at     TIMESTAMP NOT NULL
	)`,
}

// Open opens (creating if needed) the sqlite database at path and applies
// the schema. Pass ":memory:" for an in-memory database.
func Open(ctx context.Context, path string, busyTimeout time.Duration, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", path, busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	logger.Info("database ready", "path", path)
	return db, nil
}

// HealthCheck pings the database to catch path/lock issues early.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}
