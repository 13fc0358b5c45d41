// Package config provides configuration loading and validation for git-auto-commit.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Standard file locations.
const (
	defaultConfigPath      = "~/.config/git-auto-commit/config.json"
	defaultCredentialsPath = "~/.config/git-auto-commit/credentials"
)

// ConfigPathEnv overrides the config file location when set.
const ConfigPathEnv = "GAC_CONFIG"

// Config holds all git-auto-commit settings.
type Config struct {
	Models          ModelsConfig `json:"models"`
	TimeoutSeconds  int          `json:"timeout_seconds"`  // Hard limit for one generation call
	MaxAutoRerolls  int          `json:"max_auto_rerolls"` // Silent retries after a validation failure
	MaxLineLength   int          `json:"max_line_length"`
	MaxFilesShown   int          `json:"max_files_shown"`
	Diff            DiffConfig   `json:"diff"`
	API             APIConfig    `json:"api"`
	CredentialsPath string       `json:"credentials_path"`

	// expandedPaths tracks whether ExpandPaths has been called.
	expandedPaths bool
}

// ModelsConfig maps the fast and smart tiers to concrete model names per backend.
type ModelsConfig struct {
	CLI TierModels `json:"cli"`
	API TierModels `json:"api"`
}

// TierModels names the model used for each tier.
type TierModels struct {
	Fast  string `json:"fast"`
	Smart string `json:"smart"`
}

// DiffConfig holds the diff sizing thresholds.
type DiffConfig struct {
	DefaultContext int `json:"default_context"`
	ReducedContext int `json:"reduced_context"`
	WarnBytes      int `json:"warn_bytes"`
	MaxBytes       int `json:"max_bytes"`
}

// APIConfig holds settings for the direct API backend.
type APIConfig struct {
	BaseURL   string `json:"base_url"`
	MaxTokens int    `json:"max_tokens"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Models: ModelsConfig{
			CLI: TierModels{Fast: "haiku", Smart: "sonnet"},
			API: TierModels{Fast: "claude-haiku-4-5", Smart: "claude-sonnet-4-5"},
		},
		TimeoutSeconds: 30,
		MaxAutoRerolls: 3,
		MaxLineLength:  72,
		MaxFilesShown:  10,
		Diff: DiffConfig{
			DefaultContext: 3,
			ReducedContext: 1,
			WarnBytes:      50 * 1024,
			MaxBytes:       100 * 1024,
		},
		API: APIConfig{
			BaseURL:   "https://api.anthropic.com",
			MaxTokens: 1024,
		},
		CredentialsPath: defaultCredentialsPath,
	}
}

// Timeout returns the generation timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads config from $GAC_CONFIG or the standard location
// (~/.config/git-auto-commit/config.json), falling back to defaults if the
// file doesn't exist. Missing fields use default values (not zero values).
func Load() (*Config, error) {
	path := os.Getenv(ConfigPathEnv)
	if path == "" {
		path = defaultConfigPath
	}
	configPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// If the file doesn't exist, returns default config.
// If the file exists but is invalid, returns an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cfg.ExpandPaths(); err != nil {
			return nil, fmt.Errorf("failed to expand paths: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg fileConfig
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeConfig(cfg, &fileCfg)

	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// fileConfig is used for parsing JSON with pointer fields to detect what was set.
type fileConfig struct {
	Models          *fileModelsConfig `json:"models"`
	TimeoutSeconds  *int              `json:"timeout_seconds"`
	MaxAutoRerolls  *int              `json:"max_auto_rerolls"`
	MaxLineLength   *int              `json:"max_line_length"`
	MaxFilesShown   *int              `json:"max_files_shown"`
	Diff            *fileDiffConfig   `json:"diff"`
	API             *fileAPIConfig    `json:"api"`
	CredentialsPath *string           `json:"credentials_path"`
}

type fileModelsConfig struct {
	CLI *fileTierModels `json:"cli"`
	API *fileTierModels `json:"api"`
}

type fileTierModels struct {
	Fast  *string `json:"fast"`
	Smart *string `json:"smart"`
}

type fileDiffConfig struct {
	DefaultContext *int `json:"default_context"`
	ReducedContext *int `json:"reduced_context"`
	WarnBytes      *int `json:"warn_bytes"`
	MaxBytes       *int `json:"max_bytes"`
}

type fileAPIConfig struct {
	BaseURL   *string `json:"base_url"`
	MaxTokens *int    `json:"max_tokens"`
}

// mergeConfig merges file config values into the default config.
// Only non-nil values from the file config are applied.
func mergeConfig(cfg *Config, fileCfg *fileConfig) {
	if fileCfg.TimeoutSeconds != nil {
		cfg.TimeoutSeconds = *fileCfg.TimeoutSeconds
	}
	if fileCfg.MaxAutoRerolls != nil {
		cfg.MaxAutoRerolls = *fileCfg.MaxAutoRerolls
	}
	if fileCfg.MaxLineLength != nil {
		cfg.MaxLineLength = *fileCfg.MaxLineLength
	}
	if fileCfg.MaxFilesShown != nil {
		cfg.MaxFilesShown = *fileCfg.MaxFilesShown
	}
	if fileCfg.CredentialsPath != nil {
		cfg.CredentialsPath = *fileCfg.CredentialsPath
	}

	if fileCfg.Models != nil {
		mergeTierModels(&cfg.Models.CLI, fileCfg.Models.CLI)
		mergeTierModels(&cfg.Models.API, fileCfg.Models.API)
	}

	if fileCfg.Diff != nil {
		if fileCfg.Diff.DefaultContext != nil {
			cfg.Diff.DefaultContext = *fileCfg.Diff.DefaultContext
		}
		if fileCfg.Diff.ReducedContext != nil {
			cfg.Diff.ReducedContext = *fileCfg.Diff.ReducedContext
		}
		if fileCfg.Diff.WarnBytes != nil {
			cfg.Diff.WarnBytes = *fileCfg.Diff.WarnBytes
		}
		if fileCfg.Diff.MaxBytes != nil {
			cfg.Diff.MaxBytes = *fileCfg.Diff.MaxBytes
		}
	}

	if fileCfg.API != nil {
		if fileCfg.API.BaseURL != nil {
			cfg.API.BaseURL = *fileCfg.API.BaseURL
		}
		if fileCfg.API.MaxTokens != nil {
			cfg.API.MaxTokens = *fileCfg.API.MaxTokens
		}
	}
}

func mergeTierModels(dst *TierModels, src *fileTierModels) {
	if src == nil {
		return
	}
	if src.Fast != nil {
		dst.Fast = *src.Fast
	}
	if src.Smart != nil {
		dst.Smart = *src.Smart
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	var errs []error

	if c.TimeoutSeconds < 1 {
		errs = append(errs, errors.New("timeout_seconds must be >= 1"))
	}

	if c.MaxAutoRerolls < 0 {
		errs = append(errs, errors.New("max_auto_rerolls must be >= 0"))
	}

	if c.MaxLineLength < 1 {
		errs = append(errs, errors.New("max_line_length must be >= 1"))
	}

	if c.MaxFilesShown < 1 {
		errs = append(errs, errors.New("max_files_shown must be >= 1"))
	}

	if c.Models.CLI.Fast == "" || c.Models.CLI.Smart == "" {
		errs = append(errs, errors.New("models.cli.fast and models.cli.smart must be non-empty"))
	}

	if c.Models.API.Fast == "" || c.Models.API.Smart == "" {
		errs = append(errs, errors.New("models.api.fast and models.api.smart must be non-empty"))
	}

	if c.Diff.ReducedContext < 0 {
		errs = append(errs, errors.New("diff.reduced_context must be >= 0"))
	}

	if c.Diff.DefaultContext <= c.Diff.ReducedContext {
		errs = append(errs, errors.New("diff.default_context must be greater than diff.reduced_context"))
	}

	if c.Diff.WarnBytes < 1 {
		errs = append(errs, errors.New("diff.warn_bytes must be >= 1"))
	}

	if c.Diff.MaxBytes < c.Diff.WarnBytes {
		errs = append(errs, errors.New("diff.max_bytes must be >= diff.warn_bytes"))
	}

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url must be non-empty"))
	}

	if c.API.MaxTokens < 1 {
		errs = append(errs, errors.New("api.max_tokens must be >= 1"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// ExpandPaths expands ~ to home directory in all path fields.
func (c *Config) ExpandPaths() error {
	if c.expandedPaths {
		return nil
	}

	var err error
	c.CredentialsPath, err = expandPath(c.CredentialsPath)
	if err != nil {
		return fmt.Errorf("failed to expand credentials_path: %w", err)
	}

	c.expandedPaths = true
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	return filepath.Clean(path), nil
}
