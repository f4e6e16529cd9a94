package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atlaslearn/atlas/backend/repository"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// ResolveDriver picks the store driver when none is configured: no URL
// means memory, a mongodb URL means mongo, anything else postgres.
func (c DatabaseConfig) ResolveDriver() string {
	if c.Driver != "" {
		return c.Driver
	}
	switch {
	case c.URL == "":
		return DriverMemory
	case strings.HasPrefix(c.URL, "mongodb://"), strings.HasPrefix(c.URL, "mongodb+srv://"):
		return DriverMongo
	default:
		return DriverPostgres
	}
}

// OpenStore connects the configured store and migrates its schema.
func OpenStore(ctx context.Context, cfg DatabaseConfig) (repository.Store, error) {
	driver := cfg.ResolveDriver()

	var store repository.Store
	switch driver {
	case DriverPostgres:
		repo, err := repository.OpenPostgres(cfg.URL, repository.PostgresOptions{
			LogLevel:     cfg.LogLevel,
			MaxIdleConns: cfg.MaxIdleConns,
			MaxOpenConns: cfg.MaxOpenConns,
		})
		if err != nil {
			return nil, err
		}
		store = repo
	case DriverMongo:
		repo, err := repository.OpenMongo(ctx, cfg.URL, cfg.Name)
		if err != nil {
			return nil, err
		}
		store = repo
	case DriverMemory:
		slog.Warn("Database URL not configured, using in-memory store")
		store = repository.NewMemoryRepository()
	default:
		return nil, fmt.Errorf("unknown database driver: %q", driver)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Connected to database", "driver", driver)
	return store, nil
}
