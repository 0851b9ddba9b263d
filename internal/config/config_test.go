package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"OPENAI_API_KEY", "OPENAI_API_KEY_PARAM", "OPENAI_BASE_URL",
	"IMAGE_DIR", "IMAGE_SIZE", "IMAGE_QUALITY", "IMAGE_COUNT",
	"BUCKET", "DISTRIBUTION", "HTTP_TIMEOUT", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-test")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)

		assert.Equal(t, "sk-test", cfg.OpenAIKey)
		assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
		assert.Equal(t, ".", cfg.Dir)
		assert.Equal(t, "1024x1024", cfg.Size)
		assert.Equal(t, "hd", cfg.Quality)
		assert.Equal(t, 1, cfg.Count)
		assert.Equal(t, 2*time.Minute, cfg.HTTPTimeout)
		assert.Empty(t, cfg.Bucket)
	})

	t.Run("env file fills unset values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("IMAGE_SIZE", "1792x1024")

		file := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(file, []byte("OPENAI_API_KEY_PARAM=/dallebot/key\nIMAGE_SIZE=1024x1792\nIMAGE_COUNT=2\nBUCKET=images\n"), 0o600))

		cfg, err := Load(file)
		require.NoError(t, err)

		assert.Empty(t, cfg.OpenAIKey)
		assert.Equal(t, "/dallebot/key", cfg.OpenAIKeyParam)
		assert.Equal(t, "1792x1024", cfg.Size, "process env wins over .env")
		assert.Equal(t, 2, cfg.Count)
		assert.Equal(t, "images", cfg.Bucket)
	})

	t.Run("missing key", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		assert.ErrorContains(t, err, "OPENAI_API_KEY")
	})

	t.Run("bad count", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "k")
		t.Setenv("IMAGE_COUNT", "many")
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		assert.ErrorContains(t, err, "IMAGE_COUNT")
	})

	t.Run("bad timeout", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "k")
		t.Setenv("HTTP_TIMEOUT", "soon")
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		assert.ErrorContains(t, err, "HTTP_TIMEOUT")
	})
}
