// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reports

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")

	path, err := Save(dir, "customer_T1_report.md", "# report\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "customer_T1_report.md"), path)

	content, ok, err := Load(dir, "customer_T1_report.md")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "# report\n", content)

	// Saving again overwrites.
	_, err = Save(dir, "customer_T1_report.md", "v2")
	require.NoError(t, err)
	content, _, err = Load(dir, "customer_T1_report.md")
	require.NoError(t, err)
	assert.Equal(t, "v2", content)
}

func TestLoadMissing(t *testing.T) {
	content, ok, err := Load(t.TempDir(), "nope.md")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, content)
}

func TestLoadDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o755))
	_, ok, err := Load(dir, "sub.md")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestSaveRejectsPaths(t *testing.T) {
	tests := []string{"", "../escape.md", "a/b.md"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Save(t.TempDir(), name, "x")
			assert.Error(t, err)
		})
	}
}
