// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reports saves generated report files to disk and loads them back.
package reports

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultDir is the directory reports are written to when none is configured.
const DefaultDir = "reports"

// Save writes content to dir/filename, creating dir when needed, and
// returns the written path.
func Save(dir, filename, content string) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if filename == "" || filepath.Base(filename) != filename {
		return "", fmt.Errorf("invalid report filename %q", filename)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports dir: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// Load reads dir/filename. It returns ok=false without error when the file
// does not exist.
func Load(dir, filename string) (content string, ok bool, err error) {
	if dir == "" {
		dir = DefaultDir
	}
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading report: %w", err)
	}
	return string(data), true, nil
}
