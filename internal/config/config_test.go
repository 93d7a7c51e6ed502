package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func intPtr(v int) *int { return &v }

func TestLoadChunkOverlap(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    ChunkConfig
	}{
		{
			name:    "explicit zero is kept",
			content: `{"embedder":{"provider":"hashing"},"chunk":{"overlap":0}}`,
			want:    ChunkConfig{Size: 500, Overlap: intPtr(0), MinSignal: 20, Mode: "auto"},
		},
		{
			name:    "absent overlap scales with a small size",
			content: `{"embedder":{"provider":"hashing"},"chunk":{"size":40}}`,
			want:    ChunkConfig{Size: 40, Overlap: intPtr(4), MinSignal: 20, Mode: "auto"},
		},
		{
			name:    "explicit overlap",
			content: `{"embedder":{"provider":"hashing"},"chunk":{"size":40,"overlap":10}}`,
			want:    ChunkConfig{Size: 40, Overlap: intPtr(10), MinSignal: 20, Mode: "auto"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, "config.json", tt.content))
			require.NoError(t, err)
			require.Equal(t, tt.want, cfg.Chunk)
		})
	}
}

func TestLoadJSONAppliesDefaults(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"embedder": {"provider": "hashing", "model": "hashing-256"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.Equal(t, ChunkConfig{Size: 500, Overlap: intPtr(50), MinSignal: 20, Mode: "auto"}, cfg.Chunk)
	require.Equal(t, 10, cfg.Retrieval.RecallWidth)
	require.Equal(t, 500, cfg.Retrieval.PreviewLength)
	require.Equal(t, 5, cfg.Retrieval.DefaultTopK)
	require.Equal(t, 1024, cfg.Retrieval.CacheSize)
	require.Equal(t, 4, cfg.Ingest.Concurrency)
	require.Equal(t, 32, cfg.Ingest.EmbedBatchSize)
	require.Equal(t, 10, cfg.Fetch.TimeoutSeconds)
	require.Equal(t, DefaultExtensions, cfg.Fetch.Extensions)
	require.Equal(t, DefaultIgnore, cfg.Fetch.Ignore)
	require.Equal(t, "memory", cfg.VectorStore.Type)
	require.Equal(t, "ghostkube.io/service", cfg.Webhook.Label)
	require.Equal(t, "GHOST_NOTE_ID", cfg.Webhook.EnvName)
	require.Equal(t, "hashing", cfg.Embedder.Provider)
}

func TestLoadYAMLWithEnv(t *testing.T) {
	t.Setenv("GHOSTKUBE_TEST_KEY", "sk-from-env")
	path := writeFile(t, "config.yaml", `
port: 9000
embedder:
  provider: openai
  model: text-embedding-3-small
  data:
    api_key: ${GHOSTKUBE_TEST_KEY}
  fallbacks:
    - provider: hashing
      model: hashing-256
reranker:
  provider: tei
  data:
    base_url: http://tei:8080
vector_store:
  type: sqlite
  data:
    path: /tmp/index.db
jobs:
  resync_urls:
    - https://github.com/acme/api
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Port)
	require.Equal(t, "openai", cfg.Embedder.Provider)
	require.Equal(t, map[string]interface{}{"api_key": "sk-from-env"}, cfg.Embedder.Data)
	require.Len(t, cfg.Embedder.Fallbacks, 1)
	require.Equal(t, "tei", cfg.Reranker.Provider)
	require.Equal(t, "sqlite", cfg.VectorStore.Type)
	require.Equal(t, "0 3 * * *", cfg.Jobs.ResyncSpec)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing embedder", content: `{}`},
		{name: "overlap too large", content: `{"embedder":{"provider":"hashing"},"chunk":{"size":10,"overlap":10}}`},
		{name: "unknown store", content: `{"embedder":{"provider":"hashing"},"vector_store":{"type":"faiss"}}`},
		{name: "pgvector without db", content: `{"embedder":{"provider":"hashing"},"vector_store":{"type":"pgvector"}}`},
		{name: "db cache without db", content: `{"embedder":{"provider":"hashing","db_cache":true}}`},
		{name: "bad json", content: `{"port":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.json", tt.content))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, "hashing", cfg.Embedder.Provider)
	require.Equal(t, "sqlite", cfg.VectorStore.Type)
	require.Equal(t, 500, cfg.Chunk.Size)
}
