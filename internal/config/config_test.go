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
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "en-US", cfg.Voice.DefaultLocale)
	assert.InDelta(t, 0.70, cfg.Voice.Threshold, 1e-9)
	assert.Equal(t, time.Minute, cfg.Entitlements.CacheTTL)
	assert.True(t, cfg.IsDev())
	assert.NotEmpty(t, cfg.Session.Secret, "dev mode gets a throwaway secret")
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("BIZDESK_SERVER_PORT", "9090")
	t.Setenv("BIZDESK_DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file:test.db")
	t.Setenv("BIZDESK_STORAGE_DRIVER", "s3")
	t.Setenv("BIZDESK_STORAGE_BUCKET", "receipts")
	t.Setenv("BIZDESK_ENTITLEMENTS_CACHE_TTL", "30s")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:test.db", cfg.Database.DSN)
	assert.Equal(t, "receipts", cfg.Storage.Bucket)
	assert.Equal(t, 30*time.Second, cfg.Entitlements.CacheTTL)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, err := Load(New())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv("SESSION_SECRET", "a-production-grade-secret")
	cfg, err := Load(New())
	require.NoError(t, err)
	assert.False(t, cfg.IsDev())
}

func TestLoad_InvalidValues(t *testing.T) {
	v := New()
	v.Set("database.driver", "mysql")
	v.Set("storage.driver", "s3")
	v.Set("log.format", "xml")
	v.Set("voice.threshold", 1.5)
	_, err := Load(v)
	require.ErrorIs(t, err, ErrInvalidConfig)
	for _, frag := range []string{"database.driver", "storage.bucket", "log.format", "voice.threshold"} {
		assert.Contains(t, err.Error(), frag)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bizdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"7000\"\nvoice:\n  default_locale: fr\n"), 0o600))

	v := New()
	require.NoError(t, ReadFile(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "fr", cfg.Voice.DefaultLocale)

	assert.Error(t, ReadFile(New(), filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BIZDESK_LOG_LEVEL=debug\n"), 0o600))
	t.Setenv("BIZDESK_LOG_LEVEL", "")
	os.Unsetenv("BIZDESK_LOG_LEVEL")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "absent.env")))
	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}
