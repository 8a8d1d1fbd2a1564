package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "prog.pas"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileMissingIsAnError(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadFile(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
}

func TestLoadFileReadsNamedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("color: false\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.Color)
	assert.False(t, cfg.WarningsAsErrors)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, FileName), []byte("color: false\nwarningsAsErrors: true\n"), 0o644)
	require.NoError(t, err)

	cfg, err := Load(filepath.Join(dir, "prog.pas"))
	require.NoError(t, err)
	assert.False(t, cfg.Color)
	assert.True(t, cfg.WarningsAsErrors)
}
