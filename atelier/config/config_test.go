package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ATELIER_CONFIG", "does-not-exist.yaml")

	cfg := LoadConfig()

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta", cfg.GeminiBaseURL)
	assert.Equal(t, "atelier-exports", cfg.MinIOBucket)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("ATELIER_CONFIG", "does-not-exist.yaml")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("JWT_SECRET", "sekret")

	cfg := LoadConfig()

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "sekret", cfg.JWTSecret)
}

func TestLoadConfig_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte("http_addr: \":7070\"\ngemini_model: gemini-2.0-flash\n"), 0o600)
	require.NoError(t, err)

	t.Setenv("ATELIER_CONFIG", path)
	t.Setenv("JWT_SECRET", "from-env")

	cfg := LoadConfig()

	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	// Keys absent from the file keep their env values.
	assert.Equal(t, "from-env", cfg.JWTSecret)
}
