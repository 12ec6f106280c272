package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_TypesenseConfig(t *testing.T) {
	t.Setenv("TYPESENSE_ENABLED", "true")
	t.Setenv("TYPESENSE_URL", "http://test-typesense:8108")
	t.Setenv("TYPESENSE_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Typesense.Enabled)
	assert.Equal(t, "http://test-typesense:8108", cfg.Typesense.URL)
	assert.Equal(t, "test-key", cfg.Typesense.APIKey)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TYPESENSE_URL", "")
	t.Setenv("GEOLOCATION_PROVIDER", "")
	t.Setenv("DISCOVERY_DEFAULT_LIMIT", "")
	t.Setenv("DISCOVERY_MAX_LIMIT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8108", cfg.Typesense.URL)
	assert.Equal(t, "mock", cfg.Geolocation.Provider)
	assert.Equal(t, 8*time.Second, cfg.Geolocation.Timeout)
	assert.Equal(t, 20, cfg.Discovery.DefaultLimit)
	assert.Equal(t, 100, cfg.Discovery.MaxLimit)
}

func TestLoad_GeolocationOverrides(t *testing.T) {
	t.Setenv("GEOLOCATION_PROVIDER", "google")
	t.Setenv("GEOLOCATION_TIMEOUT", "3s")
	t.Setenv("GEOLOCATION_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "google", cfg.Geolocation.Provider)
	assert.Equal(t, 3*time.Second, cfg.Geolocation.Timeout)
	assert.Equal(t, 2.5, cfg.Geolocation.RequestsPerSecond)
}

func TestLoad_RejectsInvertedDiscoveryLimits(t *testing.T) {
	t.Setenv("DISCOVERY_DEFAULT_LIMIT", "200")
	t.Setenv("DISCOVERY_MAX_LIMIT", "100")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=require", c.DatabaseDSN())
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}
