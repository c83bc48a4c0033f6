package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("DB_DATABASE", "broker.db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_TYPE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "brokerdb", cfg.JWTIssuer)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10, cfg.MaxUploadMB)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("DB_DATABASE", "broker.db")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadRequiresUserForServerDatabases(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("DB_DATABASE", "broker")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_TYPE", "mariadb")
	t.Setenv("DB_USER", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_USER")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_TTL=15m\nMAX_UPLOAD_MB=2\n"), 0o600))

	t.Setenv("ENV_FILE", path)
	t.Setenv("DB_DATABASE", "broker.db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_TTL", "")
	t.Setenv("MAX_UPLOAD_MB", "")
	// godotenv does not override variables that are set, even when empty
	os.Unsetenv("JWT_TTL")
	os.Unsetenv("MAX_UPLOAD_MB")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 2, cfg.MaxUploadMB)
}
