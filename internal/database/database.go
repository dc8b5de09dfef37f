// Package database provides connection management and selects the storage
// backend for the booking and registry actors.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saadz-khan/smartcampus/internal/repository"
	"github.com/saadz-khan/smartcampus/internal/repository/memory"
	"github.com/saadz-khan/smartcampus/internal/repository/postgres"
	"github.com/saadz-khan/smartcampus/internal/repository/sqlite"
	"github.com/sirupsen/logrus"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds PostgreSQL connection settings.
type Config struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"postgres"`
	DBName   string `env:"NAME" envDefault:"smartcampus"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// DSN builds a libpq-compatible connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// StoreConfig selects and configures the storage backend.
type StoreConfig struct {
	Type       string `env:"STORAGE_TYPE" envDefault:"memory"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"smartcampus.db"`
	Postgres   Config `envPrefix:"DB_"`
}

// connectAttempts covers containers that are still starting up.
const connectAttempts = 5

// NewPool creates and validates a pgxpool connection pool, retrying while
// the server is unreachable.
func NewPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	log := logrus.WithFields(logrus.Fields{"host": cfg.Host, "db": cfg.DBName})
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		var pool *pgxpool.Pool
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		log.WithError(err).WithField("attempt", attempt).Warn("db connect failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("connect to postgres: %w", err)
}

// Open returns the configured store.
func Open(ctx context.Context, cfg StoreConfig) (repository.Store, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Type))
	fields := logrus.Fields{"storageType": kind}

	var (
		store repository.Store
		err   error
	)
	switch kind {
	case StorageSQLite:
		fields["path"] = cfg.SQLitePath
		store, err = sqlite.Open(cfg.SQLitePath)
	case StoragePostgres:
		fields["host"] = cfg.Postgres.Host
		store, err = openPostgres(ctx, cfg.Postgres)
	case StorageMemory, "":
		fields["storageType"] = "in-memory"
		store = memory.NewStore()
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	logrus.WithFields(fields).Info("Use storage")
	return store, nil
}

func openPostgres(ctx context.Context, cfg Config) (repository.Store, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := postgres.NewStore(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}
