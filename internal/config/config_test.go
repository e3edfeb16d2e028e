package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears keys for the duration of the test. t.Setenv records the
// previous value so cleanup restores it.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetenv(t, "PORT", "ENVIRONMENT", "JWT_SIGNING_KEY", "JWT_ACCESS_TTL", "DB_HOST",
		"AQI_API_URL", "CWA_COUNTY_DATASET", "CWA_TOWN_DATASET", "GEMINI_MODEL",
		"AQI_CACHE_TTL", "AQI_STALE_TTL", "WEATHER_CACHE_TTL", "CORS_ALLOWED_ORIGINS")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTAccessTTL)
	assert.Equal(t, DevSigningKey, cfg.JWTSigningKey)
	assert.Equal(t, "https://data.moenv.gov.tw/api/v2/aqx_p_432", cfg.AQIAPIURL)
	assert.Equal(t, "F-C0032-001", cfg.CWACountyDataset)
	assert.Equal(t, "F-D0047-093", cfg.CWATownDataset)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 5*time.Minute, cfg.AQICacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.AQIStaleTTL)
	assert.Equal(t, 10*time.Minute, cfg.WeatherCacheTTL)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("AQI_API_KEY=from-file\nGEMINI_API_KEY=gem-file\n"), 0o600))

	t.Setenv("AQI_API_KEY", "from-env")
	unsetenv(t, "GEMINI_API_KEY")

	cfg, err := Load(path)
	require.NoError(t, err)

	// Variables already in the environment win over the file.
	assert.Equal(t, "from-env", cfg.AQIAPIKey)
	assert.Equal(t, "gem-file", cfg.GeminiAPIKey)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_ACCESS_TTL", "1h")
	t.Setenv("REFRESH_INTERVAL", "0")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://breezy.example")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTAccessTTL)
	assert.Equal(t, time.Duration(0), cfg.RefreshInterval)
	assert.Equal(t, []string{"https://breezy.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.OTelEnabled)
}

func TestLoad_ProductionRequiresSigningKey(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	unsetenv(t, "JWT_SIGNING_KEY")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, ErrMissingSigningKey)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("AQI_CACHE_TTL", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidate_NegativeInterval(t *testing.T) {
	cfg := &Config{JWTAccessTTL: time.Hour, RefreshInterval: -time.Second, JWTSigningKey: "k"}
	assert.Error(t, cfg.Validate())
}
