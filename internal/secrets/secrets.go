// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file is one secret: the filename is the key and the trimmed file
// contents are the value. Environment variables override file values.
//
// Supported keys: webhook-token.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// WebhookToken is the bearer token sent with alert webhooks.
const WebhookToken = "webhook-token"

// DefaultDir is the secrets directory used when none is configured.
const DefaultDir = ".secrets"

// EnvPrefix prefixes the environment variable that overrides a secret:
// webhook-token becomes LAUNDRY_ANALYTICS_WEBHOOK_TOKEN.
const EnvPrefix = "LAUNDRY_ANALYTICS_"

// Secrets maps secret names to values.
type Secrets map[string]string

// Get returns the secret for key, preferring the environment override.
func (s Secrets) Get(key string) string {
	if v := strings.TrimSpace(os.Getenv(EnvName(key))); v != "" {
		return v
	}
	return s[key]
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Load reads all files in dir. A missing directory is not an error and
// yields an empty set. Unreadable files are logged and skipped.
func Load(dir string, log *zap.Logger) (Secrets, error) {
	if log == nil {
		log = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}
