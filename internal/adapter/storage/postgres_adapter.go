package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/paranovaq/game-shop/internal/port"
)

var _ port.BlobStore = (*PostgresAdapter)(nil)

const defaultPostgresDSN = "postgres://localhost/gameshop?sslmode=disable"

type PostgresAdapter struct {
	db *sql.DB
}

// NewPostgresAdapter opens dsn with the pgx driver, pings it and ensures the
// state table exists.
func NewPostgresAdapter(ctx context.Context, dsn string) (*PostgresAdapter, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BYTEA NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	return &PostgresAdapter{db: db}, nil
}

func (p *PostgresAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = $1`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("query state: %w", err)
	}
	return payload, nil
}

func (p *PostgresAdapter) Put(ctx context.Context, key string, payload []byte) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO state (bucket, payload) VALUES ($1, $2)
		ON CONFLICT (bucket) DO UPDATE SET payload = EXCLUDED.payload`,
		key, payload,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (p *PostgresAdapter) Delete(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM state WHERE bucket = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (p *PostgresAdapter) Close() error { return p.db.Close() }
