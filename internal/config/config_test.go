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
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, 30*time.Second, cfg.ReportCacheTTL)
	assert.Positive(t, cfg.RateLimitPerMinute)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("RESOLVER_PORT=9191\nPUBLIC_BASE_URL=https://beans.example/\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("RESOLVER_PORT")
		os.Unsetenv("PUBLIC_BASE_URL")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.ResolverPort)
	assert.Equal(t, "https://beans.example", cfg.PublicBaseURL)
}

func TestLoad_Rejects(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "zero")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
