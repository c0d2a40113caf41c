package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labrag/internal/domain"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, EmbedderHashing, cfg.Embedder.Type)
	assert.Equal(t, 512, cfg.Embedder.Hashing.Dimension)
	assert.Equal(t, 1000, cfg.Chunker.MaxChunkSize)
	assert.Equal(t, 200, cfg.Chunker.OverlapSize())
	assert.Equal(t, StrategyIntentBoosted, cfg.Ranking.Session.Strategy)
	assert.Equal(t, 5, cfg.Ranking.Session.TopK)
	assert.False(t, cfg.Ranking.Session.Recency)
	assert.Equal(t, StrategyStaticWeighted, cfg.Ranking.Pack.Strategy)
	assert.Equal(t, 6, cfg.Ranking.Pack.TopK)
	assert.True(t, cfg.Ranking.Pack.Recency)
	require.NotNil(t, cfg.Ranking.Pack.MinSimilarity)
	assert.InDelta(t, 0.1, *cfg.Ranking.Pack.MinSimilarity, 1e-9)
	assert.Equal(t, 280, cfg.Preview.MaxChars)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_AppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
embedder:
  type: openai
  openai:
    model: text-embedding-3-large
chunker:
  max_chunk_size: 500
ranking:
  session:
    min_similarity: 0
    top_k: 3
  section_weights:
    methodology: 1.3
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, 30, cfg.Embedder.OpenAI.TimeoutSecs)
	assert.Nil(t, cfg.Embedder.Hashing)
	assert.Equal(t, 500, cfg.Chunker.MaxChunkSize)
	assert.Equal(t, 100, cfg.Chunker.OverlapSize())
	assert.False(t, cfg.OverlapSwallowsWindow())
	assert.InDelta(t, 0.0, *cfg.Ranking.Session.MinSimilarity, 1e-9)
	assert.Equal(t, 3, cfg.Ranking.Session.TopK)
	assert.Equal(t, StrategyStaticWeighted, cfg.Ranking.Pack.Strategy)
	assert.InDelta(t, 1.3, cfg.Ranking.SectionWeights["methodology"], 1e-9)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedder: [unclosed"), 0o644))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"unknown embedder", func(c *AppConfig) { c.Embedder.Type = "word2vec" }},
		{"unknown strategy", func(c *AppConfig) { c.Ranking.Pack.Strategy = "bm25" }},
		{"threshold above one", func(c *AppConfig) { v := 1.5; c.Ranking.Session.MinSimilarity = &v }},
		{"unknown section weight", func(c *AppConfig) { c.Ranking.SectionWeights = map[string]float64{"appendix": 1} }},
		{"negative overlap", func(c *AppConfig) { v := -1; c.Chunker.Overlap = &v }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidInput)
		})
	}
}

func TestOverlapSwallowsWindow(t *testing.T) {
	cfg := defaultConfig()
	assert.False(t, cfg.OverlapSwallowsWindow())

	overlap := cfg.Chunker.MaxChunkSize
	cfg.Chunker.Overlap = &overlap
	assert.True(t, cfg.OverlapSwallowsWindow())
}

func TestLoad_ChunkerOverlap(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		max     int
		overlap int
	}{
		{"explicit zero kept", "chunker:\n  max_chunk_size: 500\n  overlap: 0\n", 500, 0},
		{"explicit value kept", "chunker:\n  max_chunk_size: 500\n  overlap: 50\n", 500, 50},
		{"missing scales with window", "chunker:\n  max_chunk_size: 150\n", 150, 30},
		{"missing block", "log:\n  level: warn\n", 1000, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path)

			require.NoError(t, err)
			assert.Equal(t, tt.max, cfg.Chunker.MaxChunkSize)
			require.NotNil(t, cfg.Chunker.Overlap)
			assert.Equal(t, tt.overlap, cfg.Chunker.OverlapSize())
			assert.False(t, cfg.OverlapSwallowsWindow())
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Ranking.Session.TopK = 9

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadDefault_WritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, path, err := LoadDefault()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "labrag", "config.yaml"), path)
	assert.FileExists(t, path)
	assert.Equal(t, EmbedderHashing, cfg.Embedder.Type)
}
