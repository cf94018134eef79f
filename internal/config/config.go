// Package config loads matchcentre settings from the environment.
//
// A .env file is read first when one exists (in the working directory or
// its parent). Values already present in the process environment win over
// .env entries, and CLI flags win over both.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BrowserHTTP       = "http"
	BrowserPlaywright = "playwright"

	DefaultDataDir   = "~/.local/share/matchcentre"
	DefaultUserAgent = "matchcentre/1.0 (github.com/pfrederiksen/matchcentre)"
	DefaultTimeout   = 30 * time.Second
)

// EnvFiles are the .env locations tried in order. The first one that loads wins.
var EnvFiles = []string{".env", "../.env"}

// Config holds runtime settings
type Config struct {
	Browser      string
	DataDir      string
	LogLevel     string
	UserAgent    string
	Timeout      time.Duration
	ChromiumPath string
	S3Bucket     string
	S3Prefix     string
	// CacheTTL enables the page cache when positive.
	CacheTTL time.Duration

	// EnvFile is the .env path that was loaded, empty if none.
	EnvFile string
}

// Load reads .env (if present) and builds a Config from the environment.
func Load() (*Config, error) {
	var loaded string
	for _, path := range EnvFiles {
		if err := godotenv.Load(path); err == nil {
			loaded = path
			break
		}
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.EnvFile = loaded
	return cfg, nil
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Browser:      strings.ToLower(getEnv("MATCHCENTRE_BROWSER", BrowserHTTP)),
		DataDir:      getEnv("MATCHCENTRE_DATA_DIR", DefaultDataDir),
		LogLevel:     getEnv("MATCHCENTRE_LOG_LEVEL", "INFO"),
		UserAgent:    getEnv("MATCHCENTRE_USER_AGENT", DefaultUserAgent),
		ChromiumPath: getEnv("MATCHCENTRE_CHROMIUM_PATH", ""),
		S3Bucket:     getEnv("MATCHCENTRE_S3_BUCKET", ""),
		S3Prefix:     strings.Trim(getEnv("MATCHCENTRE_S3_PREFIX", ""), "/"),
	}

	timeout, err := getEnvDuration("MATCHCENTRE_TIMEOUT", DefaultTimeout)
	if err != nil {
		return nil, err
	}
	cfg.Timeout = timeout

	cacheTTL, err := getEnvDuration("MATCHCENTRE_CACHE_TTL", 0)
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = cacheTTL

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted silently.
func (c *Config) Validate() error {
	switch c.Browser {
	case BrowserHTTP, BrowserPlaywright:
	default:
		return fmt.Errorf("invalid browser %q: must be %s or %s", c.Browser, BrowserHTTP, BrowserPlaywright)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", c.Timeout)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("invalid cache TTL %s: must not be negative", c.CacheTTL)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
