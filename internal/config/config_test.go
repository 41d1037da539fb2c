package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, 3*time.Second, cfg.DBTimeout)
	assert.Equal(t, StorageLocal, cfg.StorageBackend)
	assert.Equal(t, int64(5<<20), cfg.ImageMaxBytes)
	assert.Equal(t, []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}, cfg.ImageAllowedTypes)
	assert.Equal(t, 10, cfg.HistoryPageSize)
	assert.Nil(t, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("DB_TIMEOUT", "750ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("S3_USE_SSL", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("IMAGE_MAX_BYTES", "not-a-number")
	t.Setenv("ENABLE_HSTS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, 750*time.Millisecond, cfg.DBTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.S3UseSSL)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, int64(5<<20), cfg.ImageMaxBytes)
	assert.True(t, cfg.EnableHSTS)
}

func TestLoad_InvalidStorageBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_BACKEND", "ftp")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown STORAGE_BACKEND "ftp"`)
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_BACKEND", "s3")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_BUCKET")
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("DB_DSN=from_file\nLOG_LEVEL=debug\n"), 0o644))
	t.Chdir(tmp)
	t.Setenv("DB_DSN", "from_env")
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	LoadEnvFiles()

	assert.Equal(t, "from_env", os.Getenv("DB_DSN"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
}
