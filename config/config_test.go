package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/predict-client/domain/inference"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.BaseURL = "https://inference.example.com/"
	cfg.Mode = "DUAL"
	cfg.RequestTimeoutSeconds = 30
	cfg.FileExtensions = []string{"txt", ".TSV"}

	require.NoError(t, cfg.Save(path))
	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://inference.example.com", got.BaseURL)
	assert.Equal(t, inference.ModeDual, got.DefaultMode())
	assert.Equal(t, 30, got.RequestTimeoutSeconds)
	assert.Equal(t, []string{".txt", ".tsv"}, got.FileExtensions)
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	cfg, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate_Clamps(t *testing.T) {
	cfg := &Config{
		BaseURL:               "ftp://host",
		Mode:                  "bogus",
		LogLevel:              "LOUD",
		RequestTimeoutSeconds: -5,
		TickMillis:            1,
	}

	err := cfg.Validate()

	assert.ErrorIs(t, err, ErrBaseURL)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "multi", cfg.Mode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.RequestTimeoutSeconds)
	assert.Equal(t, DefaultTickMillis, cfg.TickMillis)
	assert.EqualValues(t, DefaultMaxResponseBytes, cfg.MaxResponseBytes)
	assert.Equal(t, []string{".txt"}, cfg.FileExtensions)
	assert.Equal(t, DefaultThumbnailCache, cfg.ThumbnailCacheSize)
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("PREDICT_BASE_URL", "http://10.0.0.5:9000")
	t.Setenv("PREDICT_MODE", "single")
	t.Setenv("PREDICT_LOG_LEVEL", "debug")
	t.Setenv("PREDICT_METRICS_ADDR", "127.0.0.1:9102")
	t.Setenv("PREDICT_TIMEOUT_SECONDS", "12")
	cfg := DefaultConfig()

	require.NoError(t, cfg.ApplyEnv(filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, "http://10.0.0.5:9000", cfg.BaseURL)
	assert.Equal(t, inference.ModeSingle, cfg.DefaultMode())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9102", cfg.MetricsAddr)
	assert.Equal(t, 12, cfg.RequestTimeoutSeconds)
}

func TestApplyEnv_UnsetKeepsFileValues(t *testing.T) {
	for _, k := range []string{"PREDICT_BASE_URL", "PREDICT_MODE", "PREDICT_LOG_LEVEL", "PREDICT_METRICS_ADDR", "PREDICT_TIMEOUT_SECONDS"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	cfg := DefaultConfig()
	cfg.BaseURL = "http://backend:8000"

	require.NoError(t, cfg.ApplyEnv(filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, "http://backend:8000", cfg.BaseURL)
	assert.Equal(t, "multi", cfg.Mode)
}

func TestApplyEnv_DotenvFile(t *testing.T) {
	t.Setenv("PREDICT_MODE", "")
	require.NoError(t, os.Unsetenv("PREDICT_MODE")) // restored by t.Setenv cleanup
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PREDICT_MODE=feature\n"), 0o644))
	cfg := DefaultConfig()

	require.NoError(t, cfg.ApplyEnv(path))

	assert.Equal(t, inference.ModeFeature, cfg.DefaultMode())
}

func TestApplyEnv_RejectsBadURL(t *testing.T) {
	t.Setenv("PREDICT_BASE_URL", "not a url")
	cfg := DefaultConfig()

	err := cfg.ApplyEnv(filepath.Join(t.TempDir(), "missing.env"))

	assert.ErrorIs(t, err, ErrBaseURL)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
}
