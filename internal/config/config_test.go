package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"database": {"host": "localhost"},
		"ai": {"provider": "gemini", "embed_provider": "fastembed"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.Equal(t, 384, cfg.AI.EmbedDim)
	require.Equal(t, 8000, cfg.AI.MaxInputChars)
	require.Equal(t, 60, cfg.AI.TimeoutSeconds)
	require.Equal(t, 500, cfg.RAG.ChunkSize)
	require.Equal(t, 50, cfg.RAG.ChunkOverlap)
	require.Equal(t, 5, cfg.RAG.DefaultTopK)
	require.Equal(t, 1024, cfg.RAG.MaxOutputTokens)
	require.Equal(t, float32(0.2), cfg.RAG.Temperature)
	require.Equal(t, int64(20*1024*1024), cfg.MaxUploadSize)
	require.Equal(t, 30, cfg.Jobs.CacheTTLDays)
}

func TestLoad_RequiredFields(t *testing.T) {
	_, err := Load(writeConfig(t, `{"database": {"host": "x"}, "ai": {"provider": "a", "embed_provider": "b"}}`))
	require.Error(t, err)

	_, err = Load(writeConfig(t, `{"port": 8080, "ai": {"provider": "a", "embed_provider": "b"}}`))
	require.Error(t, err)

	_, err = Load(writeConfig(t, `{"port": 8080, "database": {"host": "x"}, "ai": {"provider": "a"}}`))
	require.Error(t, err)

	_, err = Load(writeConfig(t, `{"port": 8080, "database": {"host": "x"}, "ai": {"embed_provider": "b"}}`))
	require.Error(t, err)
}

func TestLoad_RejectsOverlapNotSmallerThanChunkSize(t *testing.T) {
	_, err := Load(writeConfig(t, `{
		"port": 8080,
		"database": {"host": "x"},
		"ai": {"provider": "a", "embed_provider": "b"},
		"rag": {"chunk_size": 100, "chunk_overlap": 100}
	}`))
	require.Error(t, err)
}

func TestLoad_RejectsTopKOutOfRange(t *testing.T) {
	_, err := Load(writeConfig(t, `{
		"port": 8080,
		"database": {"host": "x"},
		"ai": {"provider": "a", "embed_provider": "b"},
		"rag": {"default_top_k": 21}
	}`))
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
