//go:build integration

package integration

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/infrastructure/clients/postgres"
	"github.com/bizfinder/discovery/internal/infrastructure/clients/redis"
	"github.com/bizfinder/discovery/pkg/config"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func testRedisConfig() *config.RedisConfig {
	return &config.RedisConfig{
		Enabled:  true,
		Host:     getEnv("TEST_REDIS_HOST", "localhost"),
		Port:     getEnvAsInt("TEST_REDIS_PORT", 6379),
		Password: getEnv("TEST_REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("TEST_REDIS_DB", 0),
	}
}

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	client, err := redis.NewClient(context.Background(), testRedisConfig())
	require.NoError(t, err, "Failed to create redis client")
	return client
}

func maybeTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	client, err := redis.NewClient(context.Background(), testRedisConfig())
	if err != nil {
		t.Logf("Redis unavailable: %v", err)
		return nil
	}
	return client
}

func newTestPostgresClient(t *testing.T) *postgres.Client {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnvAsInt("TEST_DB_PORT", 5432),
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getEnv("TEST_DB_NAME", "business_discovery_test"),
		SSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
	}

	client, err := postgres.NewClient(context.Background(), cfg)
	require.NoError(t, err, "Failed to create postgres client")
	return client
}

func runMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	migrationSQL, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(migrationSQL))
	require.NoError(t, err)
}

func cleanupBusinessData(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`TRUNCATE TABLE reviews, business_hours, businesses CASCADE`)
	require.NoError(t, err)
}

func waitForBusinessEvent(t *testing.T, ch <-chan *entities.BusinessEvent) *entities.BusinessEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "event channel closed")
		return event
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for business event")
		return nil
	}
}
