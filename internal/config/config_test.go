package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakamo-wni/weathercomment/internal/config"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		v, had := os.LookupEnv(k)
		_ = os.Unsetenv(k)
		if had {
			t.Cleanup(func() { _ = os.Setenv(k, v) })
		}
	}
}

func TestLoad_AppliesDefaultsInDevelopment(t *testing.T) {
	clearEnv(t, "APP_ENV", "DEFAULT_LLM_PROVIDER", "CORPUS_DIR", "GEO_LOCATIONS_FILE", "GENERATION_HISTORY_MAX_SIZE_MB")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.EnvDevelopment, cfg.AppEnv)
	assert.Equal(t, "openai", cfg.LLM.DefaultProvider)
	assert.Equal(t, 5, cfg.Workflow.MaxEvaluationRetries)
	assert.Equal(t, 4, cfg.Batch.MaxParallelWorkers)
	assert.Equal(t, 20, cfg.Batch.MaxParallelLocations)
	assert.Equal(t, "output", cfg.Paths.CorpusDir)
	assert.Equal(t, "data/generation_history.json", cfg.Paths.HistoryFile)
	assert.Equal(t, 100, cfg.Paths.GenerationHistoryMaxMB)
	assert.Equal(t, "data/locations.json", cfg.Paths.LocationsFile)
	assert.False(t, cfg.Forecast.EnableMemoryPressureEviction)
	assert.Equal(t, 0.85, cfg.Forecast.MemoryPressureThreshold)
}

func TestLoad_ProductionRequiresLLMAndWeatherKeys(t *testing.T) {
	clearEnv(t, "APP_ENV", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "WXTECH_API_KEY")
	require.NoError(t, os.Setenv("APP_ENV", "production"))
	t.Cleanup(func() { _ = os.Unsetenv("APP_ENV") })

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_RejectsUnknownDefaultProvider(t *testing.T) {
	clearEnv(t, "DEFAULT_LLM_PROVIDER")
	require.NoError(t, os.Setenv("DEFAULT_LLM_PROVIDER", "not-a-provider"))
	t.Cleanup(func() { _ = os.Unsetenv("DEFAULT_LLM_PROVIDER") })

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_CommentTimeoutSecondsOverridesDuration(t *testing.T) {
	clearEnv(t, "COMMENT_TIMEOUT_SECONDS")
	require.NoError(t, os.Setenv("COMMENT_TIMEOUT_SECONDS", "45"))
	t.Cleanup(func() { _ = os.Unsetenv("COMMENT_TIMEOUT_SECONDS") })

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 45e9, float64(cfg.Batch.PerItemTimeout))
}
