package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1024, cfg.BatchSize)
	assert.False(t, cfg.Parallel)
}

func TestFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polyreact.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nbatch_size: 64\nasset_db: a.db\n"), 0o644))

	t.Setenv("POLYREACT_BATCH_SIZE", "128")
	t.Setenv("POLYREACT_PARALLEL", "true")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "a.db", cfg.AssetDB)
	assert.Equal(t, 128, cfg.BatchSize)
	assert.True(t, cfg.Parallel)
}

func TestInvalidValues(t *testing.T) {
	t.Setenv("POLYREACT_BATCH_SIZE", "0")
	_, err := Load("")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_format: xml\n"), 0o644))
	t.Setenv("POLYREACT_BATCH_SIZE", "")
	_, err = Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
