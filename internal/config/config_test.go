package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Accounts = map[string]string{
		"chk0441": "Everyday Checking",
		"brk1":    "Taxable Brokerage",
	}
	cfg.Fallback.Enabled = true

	path := filepath.Join(t.TempDir(), DefaultFileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Data.Dir, got.Data.Dir)
	assert.Equal(t, cfg.Data.DBFile, got.Data.DBFile)
	assert.Equal(t, cfg.Import.Dir, got.Import.Dir)
	assert.Equal(t, cfg.Watch.Schedule, got.Watch.Schedule)
	assert.InDelta(t, cfg.Thresholds.Accept, got.Thresholds.Accept, 0.001)
	assert.InDelta(t, cfg.Thresholds.Learn, got.Thresholds.Learn, 0.001)
	assert.True(t, got.Fallback.Enabled)
	assert.Equal(t, "gpt-4o-mini", got.Fallback.Model)
	require.Len(t, got.Accounts, 2)
	assert.Equal(t, "Everyday Checking", got.Accounts["chk0441"])
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, "finsift.db", cfg.Data.DBFile)
	assert.Equal(t, "import", cfg.Import.Dir)
	assert.Equal(t, "@every 1m", cfg.Watch.Schedule)
	assert.InDelta(t, 0.70, cfg.Thresholds.Accept, 0.001)
	assert.InDelta(t, 0.70, cfg.Thresholds.Learn, 0.001)
	assert.False(t, cfg.Fallback.Enabled)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Fallback.APIKeyEnv)
	assert.Empty(t, cfg.Accounts)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
