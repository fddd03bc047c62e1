package config_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"ecapi/internal/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvFile(t *testing.T) {
	assert.Equal(t, ".env", config.EnvFile(config.EnvProduction))
	assert.Equal(t, ".env.test", config.EnvFile(config.EnvTest))
	assert.Equal(t, ".env.development", config.EnvFile(config.EnvDevelopment))
	assert.Equal(t, ".env.development", config.EnvFile("staging"))
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	for _, k := range []string{"PORT", "DATABASE_URL", "STORAGE_DIR", "DB_DRIVER", "KAFKA_BROKERS", "RATE_LIMIT_RPS", "POSTGRES_PORT", "SEED_ADMIN_EMAIL"} {
		t.Setenv(k, "")
	}

	cfg, err := config.FromEnv(config.EnvDevelopment)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "storage", cfg.StorageDir)
	assert.Equal(t, config.DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 20, cfg.RateLimitRPS)
	assert.Equal(t, "item_events", cfg.KafkaItemTopic)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Contains(t, cfg.DatabaseDSN(), "port=5432")
	assert.False(t, cfg.IsTest())
	assert.Empty(t, cfg.SeedAdminEmail)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/app")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SEED_ADMIN_EMAIL", " ops@example.com ")

	cfg, err := config.FromEnv(config.EnvTest)
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "postgres://u:p@db:5432/app", cfg.DatabaseDSN())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, config.DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "ops@example.com", cfg.SeedAdminEmail)
	assert.True(t, cfg.IsTest())
}

func TestFromEnv_Errors(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := config.FromEnv(config.EnvDevelopment)
	assert.EqualError(t, err, "JWT_SECRET is required")

	t.Setenv("JWT_SECRET", "s")
	t.Setenv("POSTGRES_PORT", "abc")
	_, err = config.FromEnv(config.EnvDevelopment)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_PORT must be number")
	// 元のエラーはCauseで取り出せる
	var numErr *strconv.NumError
	assert.True(t, errors.As(errors.Cause(err), &numErr))

	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("DB_DRIVER", "mysql")
	_, err = config.FromEnv(config.EnvDevelopment)
	assert.EqualError(t, err, "DB_DRIVER must be postgres or sqlite")
}

// プロファイルのファイルは既存の環境変数を上書きする
func TestLoad_ProfileFileOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("JWT_SECRET=from-file\nPORT=4321\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PORT", "1111")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "4321", cfg.Port)
	assert.Equal(t, config.EnvTest, cfg.AppEnv)
}
