package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/paranovaq/game-shop/internal/port"
)

var _ port.BlobStore = (*SQLiteAdapter)(nil)

// SQLiteAdapter stores blobs in a single `state` table of an embedded
// SQLite file.
type SQLiteAdapter struct {
	db   *sql.DB
	path string
}

func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	if path == "" {
		path = "gameshop.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; sqlite serializes anyway and this avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &SQLiteAdapter{db: db, path: path}, nil
}

func (s *SQLiteAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("query state: %w", err)
	}
	return payload, nil
}

func (s *SQLiteAdapter) Put(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state(bucket, payload) VALUES(?, ?)
		ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
		key, payload,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteAdapter) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE bucket = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteAdapter) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *SQLiteAdapter) Path() string { return s.path }
