package llmstxt

import (
	"os"
	"strings"
)

// Config controls how the llms.txt endpoint is mounted and what it lists.
type Config struct {
	// Path is the route the document is served on.
	Path string

	// IncludeAPIDocs controls whether the "## API Endpoints" block is
	// generated from the router.
	IncludeAPIDocs bool

	// Exclude lists route prefixes left out of the API block.
	Exclude []string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:           DefaultPath,
		IncludeAPIDocs: true,
	}
}

// ConfigFromEnv reads configuration from environment variables, falling
// back to defaults for any unset variable.
//
// Environment variables:
//   - LLMSTXT_PATH: route to serve the document on (default: "/llms.txt")
//   - LLMSTXT_INCLUDE_API_DOCS: "true" or "false" (default: "true")
//   - LLMSTXT_EXCLUDE: comma-separated route prefixes to leave out
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("LLMSTXT_PATH"); v != "" {
		if !strings.HasPrefix(v, "/") {
			v = "/" + v
		}
		cfg.Path = v
	}

	if v := os.Getenv("LLMSTXT_INCLUDE_API_DOCS"); v != "" {
		cfg.IncludeAPIDocs = strings.EqualFold(v, "true") || v == "1"
	}

	if v := os.Getenv("LLMSTXT_EXCLUDE"); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Exclude = append(cfg.Exclude, p)
			}
		}
	}

	return cfg
}
