// Package config loads application settings from a TOML file, with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/pdc-decklist/internal/version"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Environment variables that override file settings.
const (
	EnvScryfallBaseURL   = "PDC_SCRYFALL_BASE_URL"
	EnvScryfallUserAgent = "PDC_SCRYFALL_USER_AGENT"
	EnvCacheBackend      = "PDC_CACHE_BACKEND"
	EnvCachePath         = "PDC_CACHE_PATH"
	EnvServerPort        = "PDC_SERVER_PORT"
	EnvDebug             = "PDC_DEBUG"
)

const appDirName = ".pdc-decklist"

// Config represents the application configuration.
type Config struct {
	// Card-data service configuration
	Scryfall ScryfallConfig `toml:"scryfall"`

	// Lookup cache configuration
	Cache CacheConfig `toml:"cache"`

	// HTTP API configuration
	Server ServerConfig `toml:"server"`

	// Deck preparation configuration
	Render RenderConfig `toml:"render"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// ScryfallConfig contains card-data service settings.
type ScryfallConfig struct {
	BaseURL           string  `toml:"base_url"`            // API root
	Timeout           string  `toml:"timeout"`             // Per-request timeout (e.g., "10s")
	UserAgent         string  `toml:"user_agent"`          // Identifying client header
	RequestsPerSecond float64 `toml:"requests_per_second"` // 0 = unlimited
}

// CacheConfig contains caching settings.
type CacheConfig struct {
	Backend    string `toml:"backend"`     // "memory" or "sqlite"
	Path       string `toml:"path"`        // SQLite database file; "~" expands to home
	TTL        string `toml:"ttl"`         // Cache TTL (e.g., "168h")
	MaxEntries int    `toml:"max_entries"` // Max in-memory entries (0 = unlimited)
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Port int `toml:"port"`
}

// RenderConfig contains deck preparation settings.
type RenderConfig struct {
	Concurrency int `toml:"concurrency"` // Card lookups in flight; 1 = sequential
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scryfall: ScryfallConfig{
			BaseURL:           "https://api.scryfall.com",
			Timeout:           "10s",
			UserAgent:         version.UserAgent(),
			RequestsPerSecond: 10,
		},
		Cache: CacheConfig{
			Backend:    BackendMemory,
			Path:       filepath.Join("~", appDirName, "cache.db"),
			TTL:        "168h",
			MaxEntries: 0,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Render: RenderConfig{
			Concurrency: 1,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// DefaultPath returns ~/.pdc-decklist/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, appDirName, "config.toml"), nil
}

// Load reads the configuration at path, or at DefaultPath when path is empty.
// A missing file yields the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables are not overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from PDC_* environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvScryfallBaseURL); ok && v != "" {
		c.Scryfall.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvScryfallUserAgent); ok && v != "" {
		c.Scryfall.UserAgent = v
	}
	if v, ok := os.LookupEnv(EnvCacheBackend); ok && v != "" {
		c.Cache.Backend = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv(EnvCachePath); ok && v != "" {
		c.Cache.Path = v
	}
	if v, ok := os.LookupEnv(EnvServerPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvServerPort, v, err)
		}
		c.Server.Port = port
	}
	if v, ok := os.LookupEnv(EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvDebug, v, err)
		}
		c.App.DebugMode = debug
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Scryfall.BaseURL == "" {
		return fmt.Errorf("scryfall base URL cannot be empty")
	}

	timeout, err := time.ParseDuration(c.Scryfall.Timeout)
	if err != nil {
		return fmt.Errorf("invalid scryfall timeout %q: %w", c.Scryfall.Timeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("scryfall timeout must be positive: %s", timeout)
	}

	if c.Scryfall.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second cannot be negative: %v", c.Scryfall.RequestsPerSecond)
	}

	switch c.Cache.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Cache.Path == "" {
			return fmt.Errorf("cache path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.Cache.TTL, err)
	}
	if ttl <= 0 {
		return fmt.Errorf("cache TTL must be positive: %s", ttl)
	}

	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache max entries cannot be negative: %d", c.Cache.MaxEntries)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}

	if c.Render.Concurrency < 1 {
		return fmt.Errorf("render concurrency must be at least 1: %d", c.Render.Concurrency)
	}

	return nil
}

// GetScryfallTimeout returns the request timeout as a duration.
func (c *Config) GetScryfallTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Scryfall.Timeout)
}

// GetCacheTTL returns the cache TTL as a duration.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}

// GetCachePath returns the cache path with a leading "~" expanded.
func (c *Config) GetCachePath() (string, error) {
	return expandHome(c.Cache.Path)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}
