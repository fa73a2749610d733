package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// ReadStore is a read-only view over the store's file, used by the Read
// API (spec §4.1 "read-only view with stable ordering", §5 "all API
// requests use read-only connections"). Every connection modernc.org/sqlite
// opens from db's pool is opened against a "mode=ro" URI, so read-only
// enforcement happens at the SQLite layer itself rather than relying on a
// PRAGMA applied to a single pooled connection.
type ReadStore struct {
	path string
	db   *sql.DB
}

// OpenReadOnly opens path for read-only access. The file must already
// exist (spec §6 API exit code 2 "DB missing for API").
func OpenReadOnly(path string) (*ReadStore, error) {
	dsn := "file:" + path + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open read-only: %w", err)
	}
	db.SetMaxOpenConns(8)
	if _, err := db.ExecContext(context.Background(), "PRAGMA query_only=ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: set query_only: %w", err)
	}
	return &ReadStore{path: path, db: db}, nil
}

// Close releases the read-only handle's resources.
func (r *ReadStore) Close() error {
	return r.db.Close()
}

// Path returns the file path the store was opened with.
func (r *ReadStore) Path() string {
	return r.path
}

// Meta returns the full meta key/value mapping (spec §4.3 "/v1/status").
func (r *ReadStore) Meta(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
