package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("API.BaseURL = %q, want http://localhost:8000", cfg.API.BaseURL)
	}
	if cfg.GetTopN() != 5 {
		t.Errorf("GetTopN() = %d, want 5", cfg.GetTopN())
	}
	if cfg.GetAPITimeout() != 30*time.Second {
		t.Errorf("GetAPITimeout() = %v, want 30s", cfg.GetAPITimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("INTERNPATH_API_URL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().API, cfg.API)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("INTERNPATH_API_URL", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://api.example.com"
	cfg.UI.TopN = 3
	cfg.Logging.Categories = map[string]bool{"api": false}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", loaded.API.BaseURL)
	assert.Equal(t, 3, loaded.GetTopN())
	assert.False(t, loaded.Logging.IsCategoryEnabled("api"))
	assert.True(t, loaded.Logging.IsCategoryEnabled("chat"))
}

func TestSaveNeverWritesToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.API.Token = "secret-token"
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-token")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, true},
		{"non-http scheme", func(c *Config) { c.API.BaseURL = "ftp://x" }, true},
		{"no host", func(c *Config) { c.API.BaseURL = "http://" }, true},
		{"bad timeout", func(c *Config) { c.API.Timeout = "soon" }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, true},
		{"dark theme", func(c *Config) { c.UI.Theme = "dark" }, false},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetAPITimeoutFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = "garbage"
	assert.Equal(t, 30*time.Second, cfg.GetAPITimeout())

	cfg.API.Timeout = "0"
	assert.Equal(t, time.Duration(0), cfg.GetAPITimeout())

	cfg.API.Timeout = "5s"
	assert.Equal(t, 5*time.Second, cfg.GetAPITimeout())
}
