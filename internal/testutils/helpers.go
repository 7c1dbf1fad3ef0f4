package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it.
// It returns the absolute path to the temp dir and the initialized repository.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	tmpDir := t.TempDir()

	absPath, err := filepath.Abs(tmpDir)
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// WriteFiles writes name -> content pairs under dir, creating subdirectories as needed.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "write %s", name)
	}
}

// SceneDir writes a small three-scene story to a fresh temp dir and returns the path.
// "start" offers the tower (guarded by a key) and the cellar; "tower" ends the story.
func SceneDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	WriteFiles(t, dir, map[string]string{
		"start.md": `---
id: start
title: Gate
start: true
actions:
  - type: add_item
    item: key
choices:
  - label: Climb the tower
    target: tower
    conditions:
      - type: has_item
        item: key
  - label: Go down
    target: cellar.md
---
You stand at the **gate**.`,
		"tower.md": `---
title: Tower
---
The wind howls.`,
		"cellar.md": `---
title: Cellar
choices:
  - text: Back up
    to: start
---
Dark and damp.`,
	})
	return dir
}
