// Package cache persists compiled command lines keyed by pipeline
// fingerprint in SQLite.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timeLayout sorts lexically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNotFound is returned by Get when no entry has the fingerprint.
var ErrNotFound = errors.New("cache entry not found")

// Entry is one cached compilation.
type Entry struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Name        string    `json:"name"`
	Args        []string  `json:"args"`
	CreatedAt   time.Time `json:"created_at"`
	LastHitAt   time.Time `json:"last_hit_at,omitzero"`
	Hits        int       `json:"hits"`
}

// Store reads and writes compiled_pipeline rows.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore wraps an already bootstrapped database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Open opens the database at path and returns a store over it.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Get returns the entry for fingerprint and records a hit.
func (s *Store) Get(ctx context.Context, fingerprint string) (*Entry, error) {
	hitAt := s.now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE compiled_pipeline SET hits = hits + 1, last_hit_at = ? WHERE fingerprint = ?;`,
		hitAt.Format(timeLayout), fingerprint)
	if err != nil {
		return nil, fmt.Errorf("record cache hit: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, fingerprint, name, args, created_at, last_hit_at, hits
FROM compiled_pipeline WHERE fingerprint = ?;`, fingerprint)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Put stores a compilation. An existing entry with the same fingerprint is
// kept and returned unchanged.
func (s *Store) Put(ctx context.Context, fingerprint, name string, args []string) (*Entry, error) {
	if fingerprint == "" {
		return nil, fmt.Errorf("fingerprint is required")
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal args: %w", err)
	}

	entry := &Entry{
		ID:          uuid.NewString(),
		Fingerprint: fingerprint,
		Name:        name,
		Args:        append([]string(nil), args...),
		CreatedAt:   s.now(),
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO compiled_pipeline(id, fingerprint, name, args, created_at, hits)
VALUES(?, ?, ?, ?, ?, 0)
ON CONFLICT(fingerprint) DO NOTHING;
`, entry.ID, fingerprint, name, string(argsJSON), entry.CreatedAt.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("insert cache entry: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, fingerprint, name, args, created_at, last_hit_at, hits
FROM compiled_pipeline WHERE fingerprint = ?;`, fingerprint)
	return scanEntry(row)
}

// Recent lists up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, fingerprint, name, args, created_at, last_hit_at, hits
FROM compiled_pipeline
ORDER BY created_at DESC, id ASC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent entries: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		entry     Entry
		argsJSON  string
		createdAt string
		lastHitAt sql.NullString
	)
	if err := row.Scan(&entry.ID, &entry.Fingerprint, &entry.Name, &argsJSON, &createdAt, &lastHitAt, &entry.Hits); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan cache entry: %w", err)
	}
	if err := json.Unmarshal([]byte(argsJSON), &entry.Args); err != nil {
		return nil, fmt.Errorf("decode cached args: %w", err)
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	entry.CreatedAt = t
	if lastHitAt.Valid {
		t, err := time.Parse(timeLayout, lastHitAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_hit_at: %w", err)
		}
		entry.LastHitAt = t
	}
	return &entry, nil
}
