package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the default configuration file name.
const FileName = "storefront.yml"

// Environment variables consulted by Locate and ApplyEnv.
const (
	EnvConfig     = "STOREFRONT_CONFIG"
	EnvBackendURL = "STOREFRONT_BACKEND_URL"
	EnvRedisURL   = "STOREFRONT_REDIS_URL"
	EnvLogLevel   = "STOREFRONT_LOG_LEVEL"
	EnvRateLimit  = "STOREFRONT_RATE_LIMIT"
)

// Session store kinds.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config represents the top-level storefront.yml configuration
type Config struct {
	Version string        `yaml:"version"`
	Backend BackendConfig `yaml:"backend"`
	Session SessionConfig `yaml:"session"`
	Redis   *RedisConfig  `yaml:"redis,omitempty"`
	Catalog CatalogConfig `yaml:"catalog"`
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
	Output  string        `yaml:"output,omitempty"` // table, jsonl or json
}

// BackendConfig describes the REST backend and how hard we may call it
type BackendConfig struct {
	URL                  string        `yaml:"url"`
	Timeout              time.Duration `yaml:"timeout,omitempty"`
	RateLimit            float64       `yaml:"rate_limit,omitempty"` // requests per second, 0 = unlimited
	Burst                int           `yaml:"burst,omitempty"`
	MaxConcurrentLookups int           `yaml:"max_concurrent_lookups,omitempty"`
}

// SessionConfig selects where identity tokens are kept
type SessionConfig struct {
	Store string `yaml:"store,omitempty"` // file, redis or memory
	File  string `yaml:"file,omitempty"`  // identity file for the file store
}

// RedisConfig is shared by the redis session store and the catalog cache
type RedisConfig struct {
	URL       string `yaml:"url"`
	Namespace string `yaml:"namespace,omitempty"`
}

// CatalogConfig controls the optional catalog snapshot cache
type CatalogConfig struct {
	Cache    bool          `yaml:"cache,omitempty"` // requires redis
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty"`
}

// LoggingConfig controls the structured log stream
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error
	File  string `yaml:"file,omitempty"`  // empty = stderr
}

// TracingConfig controls span export
type TracingConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	File    string `yaml:"file,omitempty"` // empty = stderr
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{Version: "1.0"}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Backend.URL == "" {
		c.Backend.URL = "http://localhost:5000"
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 15 * time.Second
	}
	if c.Backend.Burst == 0 {
		c.Backend.Burst = 5
	}
	if c.Backend.MaxConcurrentLookups == 0 {
		c.Backend.MaxConcurrentLookups = 8
	}
	if c.Session.Store == "" {
		c.Session.Store = StoreFile
	}
	if c.Session.Store == StoreFile && c.Session.File == "" {
		c.Session.File = filepath.Join(ConfigDir(), "identity.yml")
	}
	if c.Redis != nil && c.Redis.Namespace == "" {
		c.Redis.Namespace = "default"
	}
	if c.Catalog.CacheTTL == 0 {
		c.Catalog.CacheTTL = 5 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	if c.Output == "" {
		c.Output = "table"
	}
}

// Validate performs strict validation on the configuration
func (c *Config) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.url must be an absolute http(s) URL, got %q", c.Backend.URL)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must be >= 0, got %s", c.Backend.Timeout)
	}
	if c.Backend.RateLimit < 0 {
		return fmt.Errorf("backend.rate_limit must be >= 0 (0 = unlimited), got %g", c.Backend.RateLimit)
	}
	if c.Backend.Burst < 1 {
		return fmt.Errorf("backend.burst must be >= 1, got %d", c.Backend.Burst)
	}
	if c.Backend.MaxConcurrentLookups < 1 {
		return fmt.Errorf("backend.max_concurrent_lookups must be >= 1, got %d", c.Backend.MaxConcurrentLookups)
	}

	switch c.Session.Store {
	case StoreFile, StoreMemory:
	case StoreRedis:
		if c.Redis == nil || c.Redis.URL == "" {
			return fmt.Errorf("session.store 'redis' requires redis.url")
		}
	default:
		return fmt.Errorf("session.store must be 'file', 'redis' or 'memory', got '%s'", c.Session.Store)
	}

	if c.Redis != nil {
		if err := ValidateNamespace(c.Redis.Namespace); err != nil {
			return err
		}
	}

	if c.Catalog.Cache && (c.Redis == nil || c.Redis.URL == "") {
		return fmt.Errorf("catalog.cache requires redis.url")
	}
	if c.Catalog.CacheTTL < 0 {
		return fmt.Errorf("catalog.cache_ttl must be >= 0, got %s", c.Catalog.CacheTTL)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got '%s'", c.Logging.Level)
	}

	switch c.Output {
	case "table", "jsonl", "json":
	default:
		return fmt.Errorf("output must be table, jsonl or json, got '%s'", c.Output)
	}

	return nil
}

// ApplyEnv overrides file settings with STOREFRONT_* environment variables
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvBackendURL); v != "" {
		c.Backend.URL = strings.TrimSpace(v)
	}
	if v := getenv(EnvRedisURL); v != "" {
		if c.Redis == nil {
			c.Redis = &RedisConfig{Namespace: "default"}
		}
		c.Redis.URL = strings.TrimSpace(v)
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.TrimSpace(v)
	}
	if v := getenv(EnvRateLimit); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Backend.RateLimit = f
		}
	}
}

// ConfigDir returns the per-user storefront directory
// ($XDG_CONFIG_HOME/storefront, or the OS equivalent).
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "storefront")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "storefront")
	}
	return ".storefront"
}

// Locate finds the configuration file to use. An explicit path wins, then
// $STOREFRONT_CONFIG, ./storefront.yml and finally the user config dir.
// Returns found=false when none of the candidates exist.
func Locate(explicit string) (path string, found bool) {
	if explicit != "" {
		return explicit, true
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env, true
	}
	for _, candidate := range []string{FileName, filepath.Join(ConfigDir(), FileName)} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// Load reads and validates storefront.yml from the specified path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Resolve locates and loads the configuration, falling back to defaults when
// no file exists. Environment overrides are applied last.
func Resolve(explicit string) (*Config, string, error) {
	cfg := Default()
	path, found := Locate(explicit)
	if found {
		loaded, err := Load(path)
		if err != nil {
			return nil, path, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv(os.Getenv)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, path, nil
}
