package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (and creates if needed) the cache database at path and
// ensures the compiled_pipeline table exists. The path must be on a local
// filesystem.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if err := validateFilesystem(path); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.ExecContext(pctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if err := Bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Bootstrap creates the cache table and indexes if missing.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS compiled_pipeline (
  id          TEXT PRIMARY KEY,
  fingerprint TEXT NOT NULL UNIQUE,
  name        TEXT NOT NULL,
  args        JSON NOT NULL,
  created_at  TEXT NOT NULL,
  last_hit_at TEXT,
  hits        INTEGER NOT NULL DEFAULT 0
);`,
		`CREATE INDEX IF NOT EXISTS compiled_pipeline_created_at_idx ON compiled_pipeline(created_at);`,
		`CREATE INDEX IF NOT EXISTS compiled_pipeline_name_idx ON compiled_pipeline(name);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap cache: %w", err)
		}
	}
	return nil
}
