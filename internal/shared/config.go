package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Pipeline    PipelineConfig    `toml:"pipeline"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Gemini  GeminiConfig  `toml:"gemini"`
}

// SpotifyConfig contains Spotify API credentials.
//
// The authorization-code dance happens outside this program; tokens obtained
// elsewhere are supplied here (or via SPOTIFY_ACCESS_TOKEN /
// SPOTIFY_REFRESH_TOKEN) and refreshed automatically when a refresh token is
// present.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
}

// GeminiConfig contains Generative Language API settings.
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// PipelineConfig contains tunables for the recommendation pipeline.
type PipelineConfig struct {
	Count          int     `toml:"count"`           // Default suggestion count
	SearchLimit    int     `toml:"search_limit"`    // Catalog candidates per search (top-K)
	MatchThreshold float64 `toml:"match_threshold"` // Minimum fuzzy score to accept a candidate
	PassThreshold  float64 `toml:"pass_threshold"`  // Minimum confidence for a valid verification
	MaxInFlight    int     `toml:"max_in_flight"`   // Concurrent track resolutions
	RateLimit      float64 `toml:"rate_limit"`      // Catalog requests per second
}

// DatabaseConfig contains resolution cache settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings. A non-empty APIToken gates
// every request behind a matching bearer token.
type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	APIToken string `toml:"api_token"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Secrets may be overridden by environment variables after parsing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidConfig)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() {
	for env, target := range map[string]*string{
		"SPOTIFY_CLIENT_ID":     &c.Credentials.Spotify.ClientID,
		"SPOTIFY_CLIENT_SECRET": &c.Credentials.Spotify.ClientSecret,
		"SPOTIFY_ACCESS_TOKEN":  &c.Credentials.Spotify.AccessToken,
		"SPOTIFY_REFRESH_TOKEN": &c.Credentials.Spotify.RefreshToken,
		"GEMINI_API_KEY":        &c.Credentials.Gemini.APIKey,
		"GEMINI_MODEL":          &c.Credentials.Gemini.Model,
	} {
		if v := os.Getenv(env); v != "" {
			*target = v
		}
	}
}
