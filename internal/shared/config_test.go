package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Credentials.Gemini.Model != "gemini-2.0-flash" {
			t.Errorf("expected default model gemini-2.0-flash, got %s", config.Credentials.Gemini.Model)
		}
		if config.Pipeline.Count != 5 {
			t.Errorf("expected default count 5, got %d", config.Pipeline.Count)
		}
		if config.Pipeline.MatchThreshold != 0.6 {
			t.Errorf("expected default match threshold 0.6, got %v", config.Pipeline.MatchThreshold)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected default port 8080, got %d", config.Server.Port)
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("Valid File", func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.toml")

			content := `
[credentials.spotify]
client_id = "test_id"
client_secret = "test_secret"

[credentials.gemini]
api_key = "test_key"
model = "gemini-2.5-flash"

[pipeline]
count = 8
pass_threshold = 0.7
`
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if config.Credentials.Spotify.ClientID != "test_id" {
				t.Errorf("expected client_id test_id, got %s", config.Credentials.Spotify.ClientID)
			}
			if config.Credentials.Gemini.Model != "gemini-2.5-flash" {
				t.Errorf("expected model gemini-2.5-flash, got %s", config.Credentials.Gemini.Model)
			}
			if config.Pipeline.Count != 8 {
				t.Errorf("expected count 8, got %d", config.Pipeline.Count)
			}
		})

		t.Run("Missing File", func(t *testing.T) {
			_, err := LoadConfig("/nonexistent/config.toml")
			if !errors.Is(err, ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("Invalid TOML", func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.toml")

			if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			if _, err := LoadConfig(path); err == nil {
				t.Error("expected error for invalid TOML")
			}
		})

		t.Run("Environment Override", func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.toml")

			content := `
[credentials.gemini]
api_key = "file_key"
`
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			t.Setenv("GEMINI_API_KEY", "env_key")

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if config.Credentials.Gemini.APIKey != "env_key" {
				t.Errorf("expected env override env_key, got %s", config.Credentials.Gemini.APIKey)
			}
		})
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected config file to exist: %v", err)
		}

		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when file already exists")
		}
	})
}
