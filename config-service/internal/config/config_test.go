package config

import (
	"os"
	"testing"
	"time"

	"config-console/shared/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useSecretsDir(t *testing.T) {
	t.Helper()
	prev := utils.SecretsDir
	utils.SecretsDir = t.TempDir()
	t.Cleanup(func() { utils.SecretsDir = prev })
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if prev, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { _ = os.Setenv(key, prev) })
		}
		_ = os.Unsetenv(key)
	}
}

func TestLoadConfig(t *testing.T) {
	useSecretsDir(t)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "console")
	t.Setenv("DB_NAME", "configs")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("CACHE_TTL", "1m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8091", cfg.Port)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, uint(30), cfg.PutRateLimit)
	assert.Equal(t, "postgres://console:pw@db:5432/configs?sslmode=disable", cfg.GetDSN())
}

func TestLoadConfigRequiresDatabase(t *testing.T) {
	useSecretsDir(t)
	unsetEnv(t, "DB_HOST", "DB_USER", "DB_NAME")
	t.Setenv("DB_PASSWORD", "pw")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestGetAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://a , ,http://b"}
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.GetAllowedOrigins())
}
