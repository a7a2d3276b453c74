package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all game-shop configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Remote  RemoteConfig  `yaml:"remote"`
	Sync    SyncConfig    `yaml:"sync"`
	Catalog CatalogConfig `yaml:"catalog"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
}

type HTTPConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// StorageConfig selects the blob backend persistence snapshots into.
type StorageConfig struct {
	Driver      string   `yaml:"driver"` // memory, sqlite, mysql, postgres, redis, s3
	SQLitePath  string   `yaml:"sqlite_path"`
	MySQLDSN    string   `yaml:"mysql_dsn"`
	PostgresDSN string   `yaml:"postgres_dsn"`
	Redis       RedisCfg `yaml:"redis"`
	S3          S3Config `yaml:"s3"`
}

type RedisCfg struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
}

// RemoteConfig points the session at the remote catalog service. An empty
// Addr runs the session local-only.
type RemoteConfig struct {
	Addr    string `yaml:"addr"`
	Timeout string `yaml:"timeout"`
}

type SyncConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// CatalogConfig configures the remote catalog gRPC server.
type CatalogConfig struct {
	GRPCAddr      string     `yaml:"grpc_addr"`
	MirrorToRedis bool       `yaml:"mirror_to_redis"`
	Seed          []SeedItem `yaml:"seed"`
}

// SeedItem is a catalog entry used when nothing has been persisted yet.
type SeedItem struct {
	Title       string `yaml:"title"`
	Genre       string `yaml:"genre"`
	Developer   string `yaml:"developer"`
	ReleaseDate string `yaml:"release_date"`
	Price       string `yaml:"price"`
	Stock       int    `yaml:"stock"`
}

type SessionConfig struct {
	Role string `yaml:"role"` // admin, user
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: "5s",
		},
		Storage: StorageConfig{
			Driver:     "sqlite",
			SQLitePath: "data/gameshop.db",
			Redis: RedisCfg{
				Addr:      "localhost:6379",
				KeyPrefix: "gameshop:",
			},
			S3: S3Config{
				Region: "us-east-1",
				Prefix: "gameshop/",
			},
		},
		Remote: RemoteConfig{
			Timeout: "3s",
		},
		Sync: SyncConfig{
			Workers:   4,
			QueueSize: 256,
		},
		Catalog: CatalogConfig{
			GRPCAddr: ":50051",
			Seed: []SeedItem{
				{Title: "Hollow Knight", Genre: "Metroidvania", Developer: "Team Cherry", ReleaseDate: "2017-02-24", Price: "14.99", Stock: 10},
				{Title: "Celeste", Genre: "Platformer", Developer: "Maddy Makes Games", ReleaseDate: "2018-01-25", Price: "19.99", Stock: 5},
				{Title: "Factorio", Genre: "Simulation", Developer: "Wube Software", ReleaseDate: "2020-08-14", Price: "35.00", Stock: 3},
			},
		},
		Session: SessionConfig{
			Role: "user",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults, still subject to env overrides
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GAMESHOP_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("GAMESHOP_SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := os.Getenv("GAMESHOP_MYSQL_DSN"); v != "" {
		c.Storage.MySQLDSN = v
	}
	if v := os.Getenv("GAMESHOP_POSTGRES_DSN"); v != "" {
		c.Storage.PostgresDSN = v
	}
	if v := os.Getenv("GAMESHOP_REDIS_ADDR"); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv("GAMESHOP_S3_BUCKET"); v != "" {
		c.Storage.S3.Bucket = v
	}
	if v := os.Getenv("GAMESHOP_REMOTE_ADDR"); v != "" {
		c.Remote.Addr = v
	}
	if v := os.Getenv("GAMESHOP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// GetRemoteTimeout returns the per-call remote sync timeout.
func (c *Config) GetRemoteTimeout() time.Duration {
	return parseDurationOr(c.Remote.Timeout, 3*time.Second)
}

func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDurationOr(c.HTTP.ShutdownTimeout, 5*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate checks the configuration for values the services cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "redis":
	case "mysql":
		if c.Storage.MySQLDSN == "" {
			return fmt.Errorf("storage.mysql_dsn is required for the mysql driver")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres driver")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Session.Role {
	case "admin", "user":
	default:
		return fmt.Errorf("unknown session role %q", c.Session.Role)
	}

	if c.Sync.Workers <= 0 {
		return fmt.Errorf("sync.workers must be positive")
	}
	if c.Sync.QueueSize <= 0 {
		return fmt.Errorf("sync.queue_size must be positive")
	}

	for i, seed := range c.Catalog.Seed {
		if seed.Title == "" {
			return fmt.Errorf("catalog.seed[%d]: title is required", i)
		}
	}

	return nil
}
