package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithNoFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Gateway.MaxPerTurn)
}

func TestLoadOverlaysTOMLFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	// snapshot_path has no envDefault tag, so env.Parse's defaulting pass
	// cannot clobber it back to zero the way a field with envDefault could.
	toml := "[cache]\nsnapshot_path = \"/tmp/snapshot.json\"\n"
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/snapshot.json", cfg.Cache.SnapshotPath)
	// Untouched fields keep their defaults.
	assert.Equal(t, 500, cfg.Gateway.MaxPerSession)
}

func TestLoadWithNonexistentFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Gateway.MaxPerTurn)
}

func TestLoadEnvOverridesTakePrecedenceOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	toml := "[safety]\nmax_per_turn = 42\n"
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o644))

	t.Setenv("VTCODE_SAFETY_MAX_PER_TURN", "99")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.Gateway.MaxPerTurn)
}

func TestLoadInvalidTOMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not valid = = toml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
