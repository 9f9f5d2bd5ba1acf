// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const exportDir = "export"

// Export writes every stored order to dir/orders.<format>, where format is
// "yaml" or "json". An empty dir writes under <data-dir>/export. It returns
// the written path.
func (s *Store) Export(ctx context.Context, format, dir string) (string, error) {
	if dir == "" {
		dir = filepath.Join(s.dataDir, exportDir)
	}

	orders, err := s.Orders(ctx, Filter{})
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}

	var data []byte
	switch format {
	case "yaml", "":
		format = "yaml"
		data, err = yaml.Marshal(orders)
	case "json":
		data, err = json.MarshalIndent(orders, "", "  ")
	default:
		return "", fmt.Errorf("unsupported export format %q (want yaml or json)", format)
	}
	if err != nil {
		return "", fmt.Errorf("marshaling %s: %w", format, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, "orders."+format)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}
