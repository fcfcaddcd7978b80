package app

import (
	"fmt"
	"strings"

	"github.com/shrimpsizemoose/roster/internal/cache"
	"github.com/shrimpsizemoose/roster/internal/store"
	"github.com/shrimpsizemoose/roster/internal/store/postgres"
	"github.com/shrimpsizemoose/roster/internal/store/sqlite"
)

func NewStore(dsn, migrationsDir string) (store.StudentStore, error) {
	dbType := store.DBTypeSQLite
	if strings.HasPrefix(dsn, "postgres") {
		dbType = store.DBTypePostgres
	}

	switch dbType {
	case store.DBTypePostgres:
		return postgres.NewPostgresStore(dsn, migrationsDir)
	case store.DBTypeSQLite:
		return sqlite.NewSQLiteStore(dsn, migrationsDir)
	default:
		return nil, fmt.Errorf("unable to determine database type from DSN: %s", dsn)
	}
}

// NewCache picks the snapshot backend from the DSN. An empty DSN means no
// cache.
func NewCache(config *Config) (cache.SnapshotCache, error) {
	dsn := config.Cache.DSN
	switch {
	case dsn == "":
		return nil, nil
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return cache.NewRedisCache(dsn, config.Cache.Key, config.Cache.TTL.Duration)
	default:
		s, err := NewStore(dsn, config.Database.MigrationsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache store: %w", err)
		}
		return cache.NewSQLCache(s, config.Cache.Key), nil
	}
}
