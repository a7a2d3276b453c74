package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/paranovaq/game-shop/internal/port"
)

var _ port.BlobStore = (*MySQLAdapter)(nil)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// EnsureSchema creates the state table if it does not exist.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS shop_state (
			bucket VARCHAR(64) NOT NULL PRIMARY KEY,
			payload LONGBLOB NOT NULL,
			version INT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("create shop_state: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := m.db.QueryRowContext(ctx, `
		SELECT payload FROM shop_state WHERE bucket = ?`, key,
	).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("query shop_state: %w", err)
	}

	return payload, nil
}

func (m *MySQLAdapter) Put(ctx context.Context, key string, payload []byte) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO shop_state (bucket, payload, version)
		VALUES (?, ?, 0)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload), version = version + 1`,
		key, payload,
	)
	if err != nil {
		return fmt.Errorf("upsert shop_state: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Delete(ctx context.Context, key string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM shop_state WHERE bucket = ?`, key); err != nil {
		return fmt.Errorf("delete shop_state: %w", err)
	}
	return nil
}

// Version returns how many times key has been overwritten, or -1 if absent.
func (m *MySQLAdapter) Version(ctx context.Context, key string) (int, error) {
	var version int
	err := m.db.QueryRowContext(ctx, `SELECT version FROM shop_state WHERE bucket = ?`, key).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query version: %w", err)
	}
	return version, nil
}

func (m *MySQLAdapter) Close() error { return m.db.Close() }
