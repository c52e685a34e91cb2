package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"database_url": "postgres://localhost:5432/skillgap",
		"catalog_cache_ttl": "2h",
		"catalog_retry_delay": "250ms",
		"catalog_workers": 5,
		"gap_limit": 10,
		"log_format": "json"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "postgres://localhost:5432/skillgap", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.CatalogCacheTTL.Std())
	assert.Equal(t, 250*time.Millisecond, cfg.CatalogRetryDelay.Std())
	assert.Equal(t, 5, cfg.CatalogWorkers)
	assert.Equal(t, 10, cfg.GapLimit)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{"llm_timeout": "soon"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	data, err := json.Marshal(Config{CatalogCacheTTL: Duration(90 * time.Minute)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"catalog_cache_ttl":"1h30m0s"`)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "zero config", cfg: Config{}},
		{name: "defaults", cfg: Defaults()},
		{name: "gap limit too high", cfg: Config{GapLimit: 101}, wantErr: "gap_limit"},
		{name: "recommendation limit too high", cfg: Config{RecommendationLimit: 51}, wantErr: "recommendation_limit"},
		{name: "negative workers", cfg: Config{CatalogWorkers: -1}, wantErr: "catalog_workers"},
		{name: "negative rps", cfg: Config{CatalogRPS: -1}, wantErr: "catalog_rps"},
		{name: "negative duration", cfg: Config{LLMTimeout: Duration(-time.Second)}, wantErr: "durations"},
		{name: "bad port", cfg: Config{Port: 70000}, wantErr: "port"},
		{name: "bad log format", cfg: Config{LogFormat: "xml"}, wantErr: "log_format"},
		{name: "bad redis url", cfg: Config{RedisURL: "localhost:6379"}, wantErr: "redis_url"},
		{name: "good redis url", cfg: Config{RedisURL: "redis://localhost:6379/0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{
		DatabaseURL: "postgres://db/skillgap",
		GapLimit:    5,
	}

	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "postgres://db/skillgap", merged.DatabaseURL)
	assert.Equal(t, 5, merged.GapLimit)
	assert.Equal(t, DefaultRecommendationLimit, merged.RecommendationLimit)
	assert.Equal(t, DefaultCatalogCacheTTL, merged.CatalogCacheTTL.Std())
	assert.Equal(t, DefaultCatalogWorkers, merged.CatalogWorkers)
	assert.Equal(t, DefaultCatalogRPS, merged.CatalogRPS)
	assert.Equal(t, DefaultPort, merged.Port)
	assert.Equal(t, DefaultCatalogBaseURL, merged.CatalogBaseURL)
	assert.Equal(t, 0, cfg.RecommendationLimit, "receiver must not be modified")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/skillgap")
	t.Setenv("GEMINI_API_KEY", "key-from-env")
	t.Setenv("PORT", "8080")

	cfg := Config{DatabaseURL: "postgres://file/skillgap", Model: "from-file"}
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "postgres://env/skillgap", cfg.DatabaseURL)
	assert.Equal(t, "key-from-env", cfg.GeminiAPIKey)
	assert.Equal(t, 8080, cfg.Port)
}

func TestApplyEnv_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "eighty")
	cfg := Config{}
	err := cfg.ApplyEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}
