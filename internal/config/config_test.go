package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.PageCacheTables)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lemurdb.ini")
	contents := "data_dir = /var/lib/lemurdb\nlog_level = debug\npage_cache_tables = false\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/lemurdb", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.PageCacheTables)
}

func TestLoadFallsBackToDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lemurdb.ini")
	require.NoError(t, os.WriteFile(path, []byte("log_level = warn\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.PageCacheTables)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.ini"))
	require.Error(t, err)
}
