package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "http://localhost:8000/api/")
		cfg, err := Load("tokokita")
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
		assert.Equal(t, "tokokita", cfg.ServiceName)
		assert.Equal(t, 10, cfg.Sandbox.PageSize)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("API_TIMEOUT", "5s")
		t.Setenv("SANDBOX_PAGE_SIZE", "3")
		t.Setenv("SANDBOX_DUPLICATE_ROWS", "true")
		t.Setenv("DOWNLOAD_DIR", "/tmp/out")
		cfg, err := Load("tokokita")
		require.NoError(t, err)

		assert.Equal(t, 5*time.Second, cfg.API.Timeout)
		assert.Equal(t, 3, cfg.Sandbox.PageSize)
		assert.True(t, cfg.Sandbox.DuplicateRows)
		assert.Equal(t, "/tmp/out", cfg.Storage.DownloadDir)
	})

	t.Run("malformed values fall back", func(t *testing.T) {
		t.Setenv("API_TIMEOUT", "soon")
		t.Setenv("SANDBOX_PAGE_SIZE", "many")
		cfg, err := Load("tokokita")
		require.NoError(t, err)

		assert.Equal(t, 30*time.Second, cfg.API.Timeout)
		assert.Equal(t, 10, cfg.Sandbox.PageSize)
	})
}
