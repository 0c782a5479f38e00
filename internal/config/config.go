package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/dmitrijs2005/parentlink/internal/common"
)

// Cache backends understood by the engine builder.
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendBadger = "badger"
	CacheBackendMemory = "memory"
)

// Config holds runtime settings of the sync layer.
type Config struct {
	RemoteBaseURL  string
	AuthToken      string
	RequestTimeout time.Duration

	CacheBackend string
	CachePath    string
	SealCache    bool
	SeedFile     string

	OnlineCheckInterval time.Duration

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration

	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.RemoteBaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.CacheBackend = CacheBackendSQLite
	c.CachePath = filepath.Join(xdg.DataHome, common.AppName, "cache.db")
	c.OnlineCheckInterval = 3 * time.Second
	c.RetryBaseDelay = 250 * time.Millisecond
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Validate rejects combinations the engine builder cannot serve.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case CacheBackendSQLite, CacheBackendBadger, CacheBackendMemory:
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
	if c.RemoteBaseURL == "" {
		return fmt.Errorf("remote base url is empty")
	}
	if c.RetryMaxAttempts < 0 {
		return fmt.Errorf("retry attempts must not be negative, got %d", c.RetryMaxAttempts)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones. args excludes the program name.
func LoadConfig(args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(cfg, lookupEnv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
