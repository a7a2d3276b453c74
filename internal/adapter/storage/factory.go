package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/paranovaq/game-shop/internal/config"
	"github.com/paranovaq/game-shop/internal/port"
)

// Driver identifies a concrete blob storage backend.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverMySQL    Driver = "mysql"    // MySQL server
	DriverPostgres Driver = "postgres" // PostgreSQL server
	DriverRedis    Driver = "redis"    // Redis server
	DriverS3       Driver = "s3"       // S3 / MinIO compatible
)

// OpenBlobStore connects to the backend selected by cfg.Driver. Defaults to
// sqlite when unset.
func OpenBlobStore(ctx context.Context, cfg config.StorageConfig) (port.BlobStore, error) {
	driver := Driver(cfg.Driver)
	if driver == "" {
		driver = DriverSQLite
	}

	switch driver {
	case DriverMemory:
		return NewMemoryAdapter(), nil
	case DriverSQLite:
		return NewSQLiteAdapter(cfg.SQLitePath)
	case DriverMySQL:
		db, err := OpenMySQL(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		adapter := NewMySQLAdapter(db)
		if err := adapter.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return adapter, nil
	case DriverPostgres:
		return NewPostgresAdapter(ctx, cfg.PostgresDSN)
	case DriverRedis:
		client, err := OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisAdapter(client, cfg.Redis.KeyPrefix), nil
	case DriverS3:
		return NewS3Adapter(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

func OpenMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

func OpenRedis(ctx context.Context, cfg config.RedisCfg) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
