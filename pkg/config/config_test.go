package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/go-hybridstore/pkg/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("HYBRIDSTORE_DB_PATH", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "", cfg.Database.Path)
	assert.Equal(t, "local", cfg.Embedding.Provider)
	assert.Equal(t, "all-MiniLM-L6-v2", cfg.Embedding.Model)
	assert.True(t, cfg.CircuitBreaker.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HYBRIDSTORE_DB_PATH", "/tmp/hybrid.db")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("HYBRIDSTORE_EMBEDDING_MODEL", "text-embedding-3-small")
	t.Setenv("HYBRIDSTORE_EMBEDDING_PROVIDER", "")
	t.Setenv("HYBRIDSTORE_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/hybrid.db", cfg.Database.Path)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, "openai", cfg.Embedding.Provider, "an API key implies the OpenAI provider")
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestExplicitProviderWins(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("HYBRIDSTORE_EMBEDDING_PROVIDER", "local")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Embedding.Provider)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hybridstore.yaml")

	require.NoError(t, config.WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "embedding:")
	assert.Contains(t, string(data), "circuit_breaker:")

	// Refuses to clobber an existing file.
	err = config.WriteDefault(path)
	require.Error(t, err)
}
