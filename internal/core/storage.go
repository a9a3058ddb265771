package core

import (
	"amity/internal/infra/persistence/memory"
	"amity/internal/infra/persistence/postgres"
	"amity/internal/infra/persistence/redis"
	"amity/internal/infra/persistence/sqlite"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// StorageDriver identifies a concrete state store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // process memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // one sqlite file per state name
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageRedis    StorageDriver = "redis"    // Redis hashes
)

// StorageDrivers lists the supported drivers.
var StorageDrivers = []StorageDriver{StorageMemory, StorageSQLite, StoragePostgres, StorageRedis}

// StorageOptions selects and configures a state store.
type StorageOptions struct {
	Driver        StorageDriver
	SQLiteDir     string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// OpenStateStore returns the state store for the configured driver. Defaults
// to sqlite when unset.
func OpenStateStore(ctx context.Context, opts StorageOptions, logger *zap.Logger) (StateStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver := opts.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStateStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(opts.SQLiteDir)
	case StoragePostgres:
		return postgres.NewStore(ctx, opts.PostgresDSN, logger.Named("postgres"))
	case StorageRedis:
		return redis.NewStore(ctx, redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		}, logger.Named("redis"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
