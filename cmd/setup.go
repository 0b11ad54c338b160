package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/auxq/internal/repositories"
	"github.com/desertthunder/auxq/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing and initializes the resolution
// cache database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing resolution cache", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := repositories.Migrate(db); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	r.writePlain("✓ Configuration ready: %s\n", configPath)
	r.writePlain("✓ Resolution cache ready: %s\n", config.Database.Path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Add Spotify and Gemini credentials to %s (or set SPOTIFY_ACCESS_TOKEN / GEMINI_API_KEY)\n", configPath)
	r.writePlain("2. Run 'auxq recommend \"your song\"' to queue similar tracks\n")

	return nil
}
