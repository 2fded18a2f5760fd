package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/launchpad/internal/config"
	"github.com/phrazzld/launchpad/internal/platform/filestore"
	"github.com/phrazzld/launchpad/internal/platform/postgres"
	"github.com/phrazzld/launchpad/internal/service"
)

// openConfigStore returns the Postgres store when a database URL is
// configured and the YAML directory store otherwise. The returned *sql.DB
// is nil for the directory store.
func openConfigStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.ConfigStore, *sql.DB, error) {
	if cfg.Database.URL == "" {
		store, err := filestore.New(cfg.Store.ConfigDir, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open game config directory: %w", err)
		}
		logger.Info("game configurations stored on disk", "dir", cfg.Store.ConfigDir)
		return store, nil, nil
	}

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := postgres.Migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.Info("game configurations stored in Postgres")
	return postgres.NewGameConfigStore(db, logger), db, nil
}
