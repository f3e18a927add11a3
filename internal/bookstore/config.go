package bookstore

import (
	"os"
	"strconv"
	"time"
)

// Config controls the Bookstore API.
type Config struct {
	DefaultPageSize int  // Page size when the request has none. Default 20.
	MaxPageSize     int  // Upper bound for requested page sizes. Default 100.
	Seed            bool // Whether an empty database gets the starter catalog. Default true.

	// CacheEntries bounds the read response cache. Zero disables it.
	CacheEntries int
	CacheTTL     time.Duration
}

// DefaultConfig returns the default bookstore configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultPageSize: 20,
		MaxPageSize:     100,
		Seed:            true,
		CacheEntries:    256,
		CacheTTL:        30 * time.Second,
	}
}

// ConfigFromEnv loads config from environment variables.
// BOOKSTORE_DEFAULT_PAGE_SIZE, BOOKSTORE_MAX_PAGE_SIZE, BOOKSTORE_SEED,
// BOOKSTORE_CACHE_ENTRIES, BOOKSTORE_CACHE_TTL
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("BOOKSTORE_DEFAULT_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultPageSize = n
		}
	}

	if v := os.Getenv("BOOKSTORE_MAX_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxPageSize = n
		}
	}

	if v := os.Getenv("BOOKSTORE_SEED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Seed = b
		}
	}

	if v := os.Getenv("BOOKSTORE_CACHE_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CacheEntries = n
		}
	}

	if v := os.Getenv("BOOKSTORE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CacheTTL = d
		}
	}

	if cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = cfg.MaxPageSize
	}

	return cfg
}

// pageSize clamps a requested page size to the configured bounds.
func (c *Config) pageSize(requested int) int {
	if requested <= 0 {
		return c.DefaultPageSize
	}
	if requested > c.MaxPageSize {
		return c.MaxPageSize
	}
	return requested
}
