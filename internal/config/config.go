// Package config handles the XDG configuration directory, the optional
// config.yaml file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "doit"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.yaml"

	// TokenFile is the stored session token filename.
	TokenFile = "token.json"

	// CacheDir is the default directory name of the durable task cache.
	CacheDir = "cache"
)

// Connectivity modes.
const (
	ModeAuto    = "auto"
	ModeOnline  = "online"
	ModeOffline = "offline"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `yaml:"-"`

	// Debug enables debug logging.
	Debug bool `yaml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"-"`

	// OwnerID is sent as the owner of newly created tasks.
	OwnerID int `yaml:"owner_id"`

	Remote       RemoteConfig       `yaml:"remote"`
	Cache        CacheConfig        `yaml:"cache"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
}

// RemoteConfig configures the remote todo service.
type RemoteConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	FetchLimit int           `yaml:"fetch_limit"`
}

// CacheConfig configures the durable task cache.
type CacheConfig struct {
	// Enabled selects the durable store. When false the cache is a no-op.
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// ConnectivityConfig configures the online/offline probe.
type ConnectivityConfig struct {
	Mode    string        `yaml:"mode"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns a Config with defaults applied for the given directory.
func Default(dir string) *Config {
	return &Config{
		Dir:     dir,
		OwnerID: 1,
		Remote: RemoteConfig{
			BaseURL:    "https://dummyjson.com",
			Timeout:    10 * time.Second,
			FetchLimit: 150,
		},
		Cache: CacheConfig{Enabled: true},
		Connectivity: ConnectivityConfig{
			Mode:    ModeAuto,
			Timeout: 2 * time.Second,
		},
	}
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/doit or $HOME/.config/doit.
// Settings from config.yaml in that directory and DOIT_* environment
// variables are applied on top of the defaults.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := Default(dir)

	data, err := os.ReadFile(cfg.FilePath())
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("DOIT_BASE_URL")); v != "" {
		c.Remote.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DOIT_CACHE_DIR")); v != "" {
		c.Cache.Dir = v
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DOIT_OFFLINE"))) {
	case "1", "true", "yes":
		c.Connectivity.Mode = ModeOffline
	}
}

// Validate checks settings that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	c.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(c.Remote.BaseURL), "/")
	if c.Remote.BaseURL == "" {
		return errors.New("remote.base_url must not be empty")
	}
	if c.Remote.FetchLimit < 1 {
		return fmt.Errorf("remote.fetch_limit must be positive: %d", c.Remote.FetchLimit)
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("remote.timeout must be positive: %s", c.Remote.Timeout)
	}
	if c.Connectivity.Timeout <= 0 {
		return fmt.Errorf("connectivity.timeout must be positive: %s", c.Connectivity.Timeout)
	}
	switch c.Connectivity.Mode {
	case ModeAuto, ModeOnline, ModeOffline:
	default:
		return fmt.Errorf("invalid connectivity.mode: %s", c.Connectivity.Mode)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// FilePath returns the path to config.yaml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// TokenPath returns the path to the stored session token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// CachePath returns the durable cache directory. A configured cache.dir is
// treated as a parent; doit keeps its files in an AppName subdirectory so
// that removing the cache never touches anything else there.
func (c *Config) CachePath() string {
	if c.Cache.Dir != "" {
		return filepath.Join(c.Cache.Dir, AppName)
	}
	return filepath.Join(c.Dir, CacheDir)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
