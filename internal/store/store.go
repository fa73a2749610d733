package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the single read-write handle owned by the indexer (spec §4.1,
// §5 "Store is the sole mutable resource"). Mirrors
// apiconfig.OpenSQLite/EnsureSchema's WAL-pragma setup.
type Store struct {
	path    string
	writeDB *sql.DB
}

// Open creates the store file and schema if absent, applies WAL/NORMAL
// durability pragmas, and returns a handle. Idempotent (spec §4.1).
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store: path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	// SQLite is single-writer; one connection avoids SQLITE_BUSY under our
	// own concurrent goroutines and matches apiconfig.OpenSQLite.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")
	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout=5000;")
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys=ON;")

	s := &Store{path: path, writeDB: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ensure schema: %w", err)
	}
	return s, nil
}

// Close releases the store's resources.
func (s *Store) Close() error {
	return s.writeDB.Close()
}

// Path returns the file path the store was opened with (spec §4.3
// "/v1/status" db_path field).
func (s *Store) Path() string {
	return s.path
}

// MetaGet returns the value stored under key, or ok=false if absent.
func (s *Store) MetaGet(ctx context.Context, key string) (value string, ok bool, err error) {
	row := s.writeDB.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// MetaSet upserts key=value.
func (s *Store) MetaSet(ctx context.Context, key, value string) error {
	_, err := s.writeDB.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

// nowISO returns the current time as an RFC3339-UTC string (spec §3 "all
// times are RFC3339-UTC strings").
func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
