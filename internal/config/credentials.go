package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gerunddev/git-auto-commit/internal/log"
)

// apiKeyName is the only key the credentials file understands.
const apiKeyName = "api-key"

// Credentials holds secrets read from the per-user credentials file.
type Credentials struct {
	APIKey string
}

// HasAPIKey reports whether a direct API key is available.
func (c *Credentials) HasAPIKey() bool {
	return c != nil && c.APIKey != ""
}

// LoadCredentials reads `key=value` lines from path. A missing file yields
// empty credentials, which selects the subprocess backend.
func LoadCredentials(path string) (*Credentials, error) {
	creds := &Credentials{}
	if path == "" {
		return creds, nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return creds, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open credentials file: %w", err)
	}
	defer func() { log.CloseError("credentials file", f.Close()) }()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("credentials file line %d: expected key=value", lineNo)
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))

		if key != apiKeyName {
			log.Debug("ignoring unknown credentials key", "key", key, "line", lineNo)
			continue
		}
		creds.APIKey = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	return creds, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
