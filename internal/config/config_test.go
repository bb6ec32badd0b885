package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.95, cfg.Pattern.AutoMergeThreshold)
	assert.Equal(t, 0.85, cfg.Pattern.ReviewThreshold)
	assert.Equal(t, 128, cfg.Pattern.MinHashPermutations)
	assert.Equal(t, 32, cfg.Pattern.LSHBands)

	assert.Equal(t, 30, cfg.Retention.ShortDays)
	assert.Equal(t, 90, cfg.Retention.MediumDays)
	assert.Equal(t, 365, cfg.Retention.LongDays)

	assert.Equal(t, 10, cfg.Outliers.RuleBasedMaxSamples)
	assert.Equal(t, 25, cfg.Outliers.GrubbsMaxSamples)
	assert.Equal(t, 30, cfg.Outliers.ESDMaxSamples)

	assert.False(t, cfg.Logging.DebugMode)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Store.Path, cfg.Store.Path)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Retention.ShortDays = 14
	cfg.Pattern.AutoMergeThreshold = 0.9

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 14, loaded.Retention.ShortDays)
	assert.Equal(t, 0.9, loaded.Pattern.AutoMergeThreshold)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SOURCELENS_DB", "/tmp/override.db")
	t.Setenv("SOURCELENS_DEBUG", "true")

	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.Store.Path)
	assert.True(t, cfg.Logging.DebugMode)
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan: [this is not valid: yaml"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
