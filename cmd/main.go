package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/auxq/internal/pipeline"
	"github.com/desertthunder/auxq/internal/repositories"
	"github.com/desertthunder/auxq/internal/services"
	"github.com/desertthunder/auxq/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	if os.Getenv("AUXQ_DEBUG") != "" {
		shared.SetLogLevel(logger, log.DebugLevel)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var catalog services.Catalog
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		svc, err := services.NewSpotifyService(map[string]string{
			"client_id":     config.Credentials.Spotify.ClientID,
			"client_secret": config.Credentials.Spotify.ClientSecret,
			"redirect_uri":  config.Credentials.Spotify.RedirectURI,
		})
		if err == nil {
			svc.SetRateLimit(config.Pipeline.RateLimit)
			creds := map[string]string{
				"access_token":  config.Credentials.Spotify.AccessToken,
				"refresh_token": config.Credentials.Spotify.RefreshToken,
			}
			if err := svc.Authenticate(context.Background(), creds); err != nil {
				logger.Debug("catalog authentication deferred", "error", err)
			}
			catalog = svc
		}
	}

	var generator services.Generator
	if config.Credentials.Gemini.APIKey != "" {
		if svc, err := services.NewGeminiService(
			config.Credentials.Gemini.APIKey,
			config.Credentials.Gemini.Model,
			services.WithPassThreshold(config.Pipeline.PassThreshold),
		); err == nil {
			generator = svc
		}
	}

	var cache *repositories.ResolutionRepository
	if db, err := shared.NewDatabase(config.Database.Path); err == nil {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := repositories.Migrate(db); err == nil {
			cache = repositories.NewResolutionRepository(db)
		} else {
			logger.Debug("resolution cache unavailable", "error", err)
			db.Close()
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: "config.toml",
		Catalog:    catalog,
		Generator:  generator,
		Cache:      cacheOrNil(cache),
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "auxq",
		Usage:    "AI song recommendations queued straight to your Spotify player",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

// cacheOrNil keeps a typed-nil repository from masquerading as a usable cache.
func cacheOrNil(cache *repositories.ResolutionRepository) pipeline.ResolutionCache {
	if cache == nil {
		return nil
	}
	return cache
}
