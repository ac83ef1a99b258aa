package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all internpath configuration.
type Config struct {
	// Backend endpoint and request timeout
	API APIConfig `yaml:"api"`

	// Where credentials live
	Auth AuthConfig `yaml:"auth"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the backend client.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // per-request; "0" disables
	Token   string `yaml:"-"`       // INTERNPATH_TOKEN only, never written to disk
}

// AuthConfig configures the credential store.
type AuthConfig struct {
	CredentialsPath string `yaml:"credentials_path"`
}

// UIConfig configures the TUI.
type UIConfig struct {
	Theme     string `yaml:"theme"` // auto, light, dark
	TopN      int    `yaml:"top_n"` // size of the recommendation strip
	WordWrap  int    `yaml:"word_wrap"`
	ShowStats bool   `yaml:"show_stats"`
}

// DefaultDir returns ~/.internpath, falling back to the working directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".internpath"
	}
	return filepath.Join(home, ".internpath")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dir := DefaultDir()
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: "30s",
		},
		Auth: AuthConfig{
			CredentialsPath: filepath.Join(dir, "credentials.yaml"),
		},
		UI: UIConfig{
			Theme:     "auto",
			TopN:      5,
			WordWrap:  80,
			ShowStats: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   filepath.Join(dir, "internpath.log"),
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults. Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("INTERNPATH_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("INTERNPATH_TIMEOUT"); v != "" {
		c.API.Timeout = v
	}
	if v := os.Getenv("INTERNPATH_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("INTERNPATH_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("INTERNPATH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("INTERNPATH_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// GetAPITimeout returns the request timeout, 30s if unparseable.
// Zero means no timeout.
func (c *Config) GetAPITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d < 0 {
		return 30 * time.Second
	}
	return d
}

// GetTopN returns the recommendation strip size, 5 if unset.
func (c *Config) GetTopN() int {
	if c.UI.TopN <= 0 {
		return 5
	}
	return c.UI.TopN
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url has no host")
	}

	if c.API.Timeout != "" {
		if _, err := time.ParseDuration(c.API.Timeout); err != nil {
			return fmt.Errorf("invalid api.timeout: %w", err)
		}
	}

	switch strings.ToLower(c.UI.Theme) {
	case "", "auto", "light", "dark":
	default:
		return fmt.Errorf("invalid ui.theme %q (want auto, light or dark)", c.UI.Theme)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}

	return nil
}
