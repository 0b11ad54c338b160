package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/auxq/internal/repositories"
	"github.com/desertthunder/auxq/internal/shared"
	"github.com/urfave/cli/v3"
)

// openCacheRepository loads configuration from the command's --config flag
// and opens the resolution cache it points at.
func (r *Runner) openCacheRepository(cmd *cli.Command) (*repositories.ResolutionRepository, func(), error) {
	config := r.config
	if path := cmd.String("config"); path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := shared.LoadConfig(path)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to load config: %w", err)
			}
			config = loaded
		}
	}
	if config == nil {
		config = shared.DefaultConfig()
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open resolution cache: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := repositories.Migrate(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate resolution cache: %w", err)
	}

	return repositories.NewResolutionRepository(db), func() { db.Close() }, nil
}

// CacheStats prints the number of cached resolutions.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openCacheRepository(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	count, err := repo.Count()
	if err != nil {
		return err
	}
	return r.writePlain("Cached resolutions: %d\n", count)
}

// CachePurge deletes all cached resolutions.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openCacheRepository(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	purged, err := repo.Purge()
	if err != nil {
		return err
	}

	r.logger.Info("purged resolution cache", "removed", purged)
	return r.writePlain("✓ Removed %d cached resolutions\n", purged)
}
