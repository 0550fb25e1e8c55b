package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/credhub")
	t.Setenv("API_KEY", "public-key")
	t.Setenv("DB_SCHEMA", "credentialing")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CREDHUB_CONNECTION_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/credhub", cfg.Database.URL)
	assert.Equal(t, "public-key", cfg.Database.APIKey)
	assert.Equal(t, "credentialing", cfg.Database.Schema)
	assert.True(t, cfg.Database.Configured())
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoad_FallsBackToConnectionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connection.toml")
	require.NoError(t, SaveConnectionFile(path, ConnectionFile{
		DatabaseURL: "postgres://db.internal/credhub",
		APIKey:      "stored-key",
	}))

	t.Setenv("DATABASE_URL", "")
	t.Setenv("API_KEY", "")
	t.Setenv("DB_SCHEMA", "")
	t.Setenv("CREDHUB_CONNECTION_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://db.internal/credhub", cfg.Database.URL)
	assert.Equal(t, "stored-key", cfg.Database.APIKey)
	assert.Equal(t, "public", cfg.Database.Schema)
}

func TestLoad_Unconfigured(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("API_KEY", "")
	t.Setenv("CREDHUB_CONNECTION_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Database.Configured())
}

func TestLoadConnectionFile_Missing(t *testing.T) {
	file, err := LoadConnectionFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.NoError(t, err)
	assert.Nil(t, file)
}
