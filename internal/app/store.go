package app

import (
	"context"
	"fmt"

	"github.com/voxkey/voxkey/internal/config"
	"github.com/voxkey/voxkey/pkg/storage"
	"github.com/voxkey/voxkey/pkg/storage/memstore"
	"github.com/voxkey/voxkey/pkg/storage/postgres"
	"github.com/voxkey/voxkey/pkg/storage/sqlite"
)

// OpenStore creates the settings store selected by cfg. The config layer has
// already validated the driver and its required fields. main uses this to
// share one store between the app and the suggester history; tests and
// simple embedders can let [New] open it instead.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case config.StorageSQLite:
		store, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("app: open sqlite store %q: %w", cfg.Path, err)
		}
		return store, nil
	case config.StoragePostgres:
		store, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("app: connect postgres store: %w", err)
		}
		return store, nil
	case config.StorageMemory:
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("app: unsupported storage driver %q", cfg.Driver)
	}
}
