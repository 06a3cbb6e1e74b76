package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 200.0, cfg.Layout.NodeWidth)
	assert.Equal(t, 80.0, cfg.Layout.NodeHeight)
	assert.Equal(t, 2.0, cfg.Layout.SpacingFactor)
	assert.Equal(t, 88, cfg.Compiler.LineWidth)
	assert.Equal(t, 4, cfg.Check.Workers)
	assert.Empty(t, cfg.Catalog.Path)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "windmill.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  node_width: 150\ncompiler:\n  line_width: 100\n"), 0o644))

	t.Setenv("WINDMILL_COMPILER_LINE_WIDTH", "120")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 150.0, cfg.Layout.NodeWidth)
	assert.Equal(t, 80.0, cfg.Layout.NodeHeight, "keys absent from the file keep their defaults")
	assert.Equal(t, 120, cfg.Compiler.LineWidth, "environment wins over the file")
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("WINDMILL_LAYOUT_SPACING_FACTOR", "0")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestTransformEnv(t *testing.T) {
	key, value := transformEnv("WINDMILL_LAYOUT_NODE_HEIGHT", "90")
	assert.Equal(t, "layout.node_height", key)
	assert.Equal(t, "90", value)

	key, _ = transformEnv("WINDMILL_DEBUG", "1")
	assert.Equal(t, "debug", key)
}
