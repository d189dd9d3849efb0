package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "LISTEN_ADDR", "DATABASE_URL", "DATA_DIR", "DATA_WATCH", "IMPORT_WORKERS", "RESOLVE_CACHE_SIZE", "LOG_DEBUG"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{
		Env:              "development",
		ListenAddr:       ":8080",
		DataDir:          "data",
		ResolveCacheSize: 1024,
	}, cfg)
	assert.False(t, cfg.UsePostgres())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/walletcat")
	t.Setenv("DATA_WATCH", "yes")
	t.Setenv("IMPORT_WORKERS", "3")
	t.Setenv("RESOLVE_CACHE_SIZE", "not-a-number")
	t.Setenv("LOG_DEBUG", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.UsePostgres())
	assert.True(t, cfg.DataWatch)
	assert.Equal(t, 3, cfg.ImportWorkers)
	assert.Equal(t, 1024, cfg.ResolveCacheSize, "unparsable values keep the default")
	assert.True(t, cfg.LogDebug)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("RESOLVE_CACHE_SIZE", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("RESOLVE_CACHE_SIZE", "8")
	t.Setenv("IMPORT_WORKERS", "-1")
	_, err = Load()
	assert.Error(t, err)
}
