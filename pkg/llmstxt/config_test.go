package llmstxt

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Path != "/llms.txt" {
		t.Errorf("expected default path /llms.txt, got %q", cfg.Path)
	}
	if !cfg.IncludeAPIDocs {
		t.Error("expected API docs to be included by default")
	}
	if len(cfg.Exclude) != 0 {
		t.Errorf("expected no excluded prefixes, got %v", cfg.Exclude)
	}
}

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantPath    string
		wantAPIDocs bool
		wantExclude []string
	}{
		{
			name:        "defaults",
			env:         map[string]string{},
			wantPath:    "/llms.txt",
			wantAPIDocs: true,
		},
		{
			name:        "custom path",
			env:         map[string]string{"LLMSTXT_PATH": "/.well-known/llms.txt"},
			wantPath:    "/.well-known/llms.txt",
			wantAPIDocs: true,
		},
		{
			name:        "path without slash",
			env:         map[string]string{"LLMSTXT_PATH": "ai.txt"},
			wantPath:    "/ai.txt",
			wantAPIDocs: true,
		},
		{
			name:        "api docs disabled",
			env:         map[string]string{"LLMSTXT_INCLUDE_API_DOCS": "false"},
			wantPath:    "/llms.txt",
			wantAPIDocs: false,
		},
		{
			name:        "api docs enabled with 1",
			env:         map[string]string{"LLMSTXT_INCLUDE_API_DOCS": "1"},
			wantPath:    "/llms.txt",
			wantAPIDocs: true,
		},
		{
			name:        "exclude list",
			env:         map[string]string{"LLMSTXT_EXCLUDE": "/admin, /debug,,"},
			wantPath:    "/llms.txt",
			wantAPIDocs: true,
			wantExclude: []string{"/admin", "/debug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"LLMSTXT_PATH", "LLMSTXT_INCLUDE_API_DOCS", "LLMSTXT_EXCLUDE"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := ConfigFromEnv()
			if cfg.Path != tt.wantPath {
				t.Errorf("Path: expected %q, got %q", tt.wantPath, cfg.Path)
			}
			if cfg.IncludeAPIDocs != tt.wantAPIDocs {
				t.Errorf("IncludeAPIDocs: expected %v, got %v", tt.wantAPIDocs, cfg.IncludeAPIDocs)
			}
			if len(cfg.Exclude) != len(tt.wantExclude) {
				t.Fatalf("Exclude: expected %v, got %v", tt.wantExclude, cfg.Exclude)
			}
			for i := range tt.wantExclude {
				if cfg.Exclude[i] != tt.wantExclude[i] {
					t.Errorf("Exclude[%d]: expected %q, got %q", i, tt.wantExclude[i], cfg.Exclude[i])
				}
			}
		})
	}
}
