package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, PolicySkip, cfg.RowPolicy)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Window.Start)
	assert.Equal(t, time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC), cfg.Window.End)
	assert.Equal(t, 0.9, cfg.NullColumnThreshold)
	assert.Empty(t, cfg.SpecPath)
	assert.Empty(t, cfg.SQLitePath)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("ROW_POLICY", "abort")
	t.Setenv("WINDOW_START", "2024-02-01")
	t.Setenv("WINDOW_END", "2024-06-30")
	t.Setenv("CLEAN_NULL_THRESHOLD", "0.5")
	t.Setenv("CLEAN_SPEC_PATH", "spec.yaml")
	t.Setenv("SQLITE_PATH", "out/summary.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, PolicyAbort, cfg.RowPolicy)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), cfg.Window.Start)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), cfg.Window.End)
	assert.Equal(t, 0.5, cfg.NullColumnThreshold)
	assert.Equal(t, "spec.yaml", cfg.SpecPath)
	assert.Equal(t, "out/summary.db", cfg.SQLitePath)
}

func TestLoad_InvalidWindowStart(t *testing.T) {
	t.Setenv("WINDOW_START", "January 2024")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WINDOW_START")
}

func TestLoad_WindowEndBeforeStart(t *testing.T) {
	t.Setenv("WINDOW_START", "2024-06-01")
	t.Setenv("WINDOW_END", "2024-01-01")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WINDOW_END")
}

func TestLoad_InvalidRowPolicy(t *testing.T) {
	t.Setenv("ROW_POLICY", "retry")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROW_POLICY")
}

func TestLoad_InvalidNullThreshold(t *testing.T) {
	for _, v := range []string{"0", "1.5", "-0.2", "lots"} {
		t.Setenv("CLEAN_NULL_THRESHOLD", v)
		_, err := Load()
		require.Error(t, err, "threshold %q", v)
		assert.Contains(t, err.Error(), "CLEAN_NULL_THRESHOLD")
	}
}
