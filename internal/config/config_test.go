package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// =============================================================================
// LoadFromPath
// =============================================================================

func TestLoadFromPath_MissingFile(t *testing.T) {
	// Missing file should return default config (not an error)
	cfg, err := LoadFromPath("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("expected default config for missing file, got error: %v", err)
	}

	if cfg.MaxLineLength != 72 {
		t.Errorf("expected default max_line_length=72, got %d", cfg.MaxLineLength)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.Timeout())
	}
	if strings.HasPrefix(cfg.CredentialsPath, "~") {
		t.Errorf("expected credentials path to be expanded, got %s", cfg.CredentialsPath)
	}
}

func TestLoadFromPath_ValidMinimalConfig(t *testing.T) {
	path := writeFile(t, "config.json", `{"max_auto_rerolls": 1}`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxAutoRerolls != 1 {
		t.Errorf("expected max_auto_rerolls=1, got %d", cfg.MaxAutoRerolls)
	}

	// Check defaults were applied for other fields
	if cfg.Models.CLI.Fast != "haiku" {
		t.Errorf("expected default fast cli model=haiku, got %s", cfg.Models.CLI.Fast)
	}
	if cfg.Diff.MaxBytes != 102400 {
		t.Errorf("expected default max_bytes=102400, got %d", cfg.Diff.MaxBytes)
	}
}

func TestLoadFromPath_ExplicitZeroAutoRerolls(t *testing.T) {
	// Zero is a legitimate value and must not be replaced by the default.
	path := writeFile(t, "config.json", `{"max_auto_rerolls": 0}`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxAutoRerolls != 0 {
		t.Errorf("expected max_auto_rerolls=0, got %d", cfg.MaxAutoRerolls)
	}
}

func TestLoadFromPath_FullConfig(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"models": {
			"cli": {"fast": "fast-cli", "smart": "smart-cli"},
			"api": {"fast": "fast-api", "smart": "smart-api"}
		},
		"timeout_seconds": 45,
		"max_auto_rerolls": 2,
		"max_line_length": 80,
		"max_files_shown": 5,
		"diff": {
			"default_context": 5,
			"reduced_context": 2,
			"warn_bytes": 1000,
			"max_bytes": 2000
		},
		"api": {"base_url": "http://localhost:9999", "max_tokens": 512},
		"credentials_path": "/tmp/creds"
	}`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Models.CLI.Fast != "fast-cli" || cfg.Models.CLI.Smart != "smart-cli" {
		t.Errorf("unexpected cli models: %+v", cfg.Models.CLI)
	}
	if cfg.Models.API.Fast != "fast-api" || cfg.Models.API.Smart != "smart-api" {
		t.Errorf("unexpected api models: %+v", cfg.Models.API)
	}
	if cfg.Timeout() != 45*time.Second {
		t.Errorf("expected timeout 45s, got %v", cfg.Timeout())
	}
	if cfg.MaxLineLength != 80 || cfg.MaxFilesShown != 5 || cfg.MaxAutoRerolls != 2 {
		t.Errorf("unexpected limits: %+v", cfg)
	}
	want := DiffConfig{DefaultContext: 5, ReducedContext: 2, WarnBytes: 1000, MaxBytes: 2000}
	if cfg.Diff != want {
		t.Errorf("diff = %+v, want %+v", cfg.Diff, want)
	}
	if cfg.API.BaseURL != "http://localhost:9999" || cfg.API.MaxTokens != 512 {
		t.Errorf("unexpected api config: %+v", cfg.API)
	}
	if cfg.CredentialsPath != "/tmp/creds" {
		t.Errorf("expected credentials_path=/tmp/creds, got %s", cfg.CredentialsPath)
	}
}

func TestLoadFromPath_PartialModels(t *testing.T) {
	path := writeFile(t, "config.json", `{"models": {"api": {"smart": "custom"}}}`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Models.API.Smart != "custom" {
		t.Errorf("expected smart api model=custom, got %s", cfg.Models.API.Smart)
	}
	if cfg.Models.API.Fast != "claude-haiku-4-5" {
		t.Errorf("expected fast api model default, got %s", cfg.Models.API.Fast)
	}
	if cfg.Models.CLI.Smart != "sonnet" {
		t.Errorf("expected cli smart default, got %s", cfg.Models.CLI.Smart)
	}
}

func TestLoadFromPath_InvalidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"timeout_seconds": `)

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadFromPath_InvalidValues(t *testing.T) {
	path := writeFile(t, "config.json", `{"timeout_seconds": 0, "max_files_shown": 0}`)

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "invalid configuration") {
		t.Errorf("expected invalid configuration prefix, got: %v", err)
	}
	// errors.Join reports every problem, not just the first.
	if !strings.Contains(msg, "timeout_seconds") || !strings.Contains(msg, "max_files_shown") {
		t.Errorf("expected both problems reported, got: %v", err)
	}
}

func TestLoad_UsesEnvOverride(t *testing.T) {
	path := writeFile(t, "custom.json", `{"max_line_length": 100}`)
	t.Setenv(ConfigPathEnv, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxLineLength != 100 {
		t.Errorf("expected max_line_length=100 from env path, got %d", cfg.MaxLineLength)
	}
}

// =============================================================================
// Validate
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative rerolls", func(c *Config) { c.MaxAutoRerolls = -1 }, "max_auto_rerolls"},
		{"zero line length", func(c *Config) { c.MaxLineLength = 0 }, "max_line_length"},
		{"empty cli model", func(c *Config) { c.Models.CLI.Smart = "" }, "models.cli"},
		{"empty api model", func(c *Config) { c.Models.API.Fast = "" }, "models.api"},
		{"negative reduced context", func(c *Config) { c.Diff.ReducedContext = -1 }, "diff.reduced_context"},
		{"context not reduced", func(c *Config) { c.Diff.ReducedContext = 3 }, "diff.default_context"},
		{"zero warn", func(c *Config) { c.Diff.WarnBytes = 0 }, "diff.warn_bytes"},
		{"max below warn", func(c *Config) { c.Diff.MaxBytes = c.Diff.WarnBytes - 1 }, "diff.max_bytes"},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url"},
		{"zero max tokens", func(c *Config) { c.API.MaxTokens = 0 }, "api.max_tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

// =============================================================================
// Paths
// =============================================================================

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~/creds", filepath.Join(home, "creds")},
		{"/abs/path/../creds", "/abs/creds"},
	}
	for _, tt := range tests {
		got, err := expandPath(tt.in)
		if err != nil {
			t.Fatalf("expandPath(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpandPaths_Idempotent(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ExpandPaths(); err != nil {
		t.Fatal(err)
	}
	first := cfg.CredentialsPath
	if err := cfg.ExpandPaths(); err != nil {
		t.Fatal(err)
	}
	if cfg.CredentialsPath != first {
		t.Errorf("second expansion changed path: %q -> %q", first, cfg.CredentialsPath)
	}
}

// =============================================================================
// Credentials
// =============================================================================

func TestLoadCredentials(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"plain", "api-key=sk-123\n", "sk-123", false},
		{"spaces and comments", "# my key\n\n  api-key = sk-456  \n", "sk-456", false},
		{"double quoted", `api-key="sk-789"` + "\n", "sk-789", false},
		{"single quoted", "api-key='sk-abc'\n", "sk-abc", false},
		{"unknown keys ignored", "region=us\napi-key=sk-x\n", "sk-x", false},
		{"no key", "region=us\n", "", false},
		{"malformed", "api-key sk-123\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "credentials", tt.content)
			creds, err := LoadCredentials(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if creds.APIKey != tt.want {
				t.Errorf("APIKey = %q, want %q", creds.APIKey, tt.want)
			}
			if creds.HasAPIKey() != (tt.want != "") {
				t.Errorf("HasAPIKey() = %v for key %q", creds.HasAPIKey(), tt.want)
			}
		})
	}
}

func TestLoadCredentials_MissingFile(t *testing.T) {
	creds, err := LoadCredentials(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.HasAPIKey() {
		t.Error("expected no api key from missing file")
	}
}

func TestLoadCredentials_EmptyPath(t *testing.T) {
	creds, err := LoadCredentials("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.HasAPIKey() {
		t.Error("expected no api key for empty path")
	}
}
