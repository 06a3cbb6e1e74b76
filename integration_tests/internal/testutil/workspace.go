package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Workspace is a scratch directory holding copies of scenario files.
type Workspace struct {
	Dir string
}

// NewWorkspace copies the named files from scenarios/ into a fresh
// directory. With PRESERVE_WORKSPACE set the directory is kept under
// ../tmp_integration_tests for inspection.
func NewWorkspace(t *testing.T, scenarios ...string) *Workspace {
	t.Helper()

	dir := t.TempDir()
	if os.Getenv("PRESERVE_WORKSPACE") != "" {
		root, err := filepath.Abs(filepath.Join("..", "tmp_integration_tests"))
		require.NoError(t, err)
		dir = filepath.Join(root, strings.ReplaceAll(t.Name(), "/", "_"))
		require.NoError(t, os.MkdirAll(dir, 0o755))
		t.Logf("Workspace preserved at %s", dir)
	}

	for _, name := range scenarios {
		data, err := os.ReadFile(filepath.Join("scenarios", name))
		require.NoError(t, err, "failed to read scenario %s", name)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	return &Workspace{Dir: dir}
}

// Path returns the absolute path of a file in the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Write creates a file in the workspace.
func (w *Workspace) Write(t *testing.T, name, content string) string {
	t.Helper()
	path := w.Path(name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// Read returns the contents of a workspace file.
func (w *Workspace) Read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(w.Path(name))
	require.NoError(t, err)
	return string(data)
}
