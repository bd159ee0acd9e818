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
	for _, key := range []string{"DATABASE_URL", "HOST", "PORT", "CLIPD_REDIS_ADDR", "CLIPD_CORS_ORIGINS", "CLIPD_MAX_PER_PAGE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite:///clipd.db", cfg.Database.URL)
	assert.Equal(t, "localhost", cfg.HTTP.Host)
	assert.Equal(t, 5000, cfg.HTTP.Port)
	assert.Equal(t, "localhost:5000", cfg.HTTP.Address())
	assert.Equal(t, 1000, cfg.HTTP.MaxPerPage)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 30*time.Second, cfg.PDF.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TagsTTL)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/clips")
	t.Setenv("PORT", "8080")
	t.Setenv("CLIPD_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CLIPD_REDIS_ADDR", "localhost:6379")
	t.Setenv("CLIPD_TAGS_TTL", "1m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/clips", cfg.Database.URL)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Minute, cfg.Redis.TagsTTL)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("HOST", "")
	require.NoError(t, os.Unsetenv("HOST"))
	t.Setenv("PORT", "")
	require.NoError(t, os.Unsetenv("PORT"))

	path := filepath.Join(t.TempDir(), "clipd.yml")
	content := "http:\n  host: 0.0.0.0\n  port: 9000\nlogging:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.HTTP.Address())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("bad port", func(t *testing.T) {
		t.Setenv("PORT", "70000")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("unparsable port", func(t *testing.T) {
		t.Setenv("PORT", "http")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
		assert.Error(t, err)
	})
}

func TestUsage(t *testing.T) {
	assert.Contains(t, Usage(), "DATABASE_URL")
}
