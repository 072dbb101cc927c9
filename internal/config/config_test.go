package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 1000, cfg.RAG.ChunkSize)
	require.Equal(t, 200, cfg.RAG.ChunkOverlap)
	require.Equal(t, 3, cfg.RAG.TopK)
	require.Equal(t, 10000, cfg.RAG.MaxAnalysisChars)
	require.Equal(t, "./tmp/cache", cfg.Storage.CacheDir)
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sekret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  key: ${TEST_LLM_KEY}\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "sekret", cfg.LLM.Key)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
