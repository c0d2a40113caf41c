package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"labrag/internal/domain"
	"labrag/internal/logging"
)

const (
	EmbedderHashing = "hashing"
	EmbedderOpenAI  = "openai"

	StrategyIntentBoosted  = "intent-boosted"
	StrategyStaticWeighted = "static-weighted"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Timeout returns the request timeout as a duration.
func (c OpenAIEmbedderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

type HashingEmbedderConfig struct {
	Dimension int `yaml:"dimension"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type        string                 `yaml:"type"`
	Concurrency int                    `yaml:"concurrency"`
	OpenAI      *OpenAIEmbedderConfig  `yaml:"openai,omitempty"`
	Hashing     *HashingEmbedderConfig `yaml:"hashing,omitempty"`
}

// ChunkerConfig configures the window size and overlap, in characters.
// A missing overlap defaults to a fifth of the window; an explicit 0 is kept.
type ChunkerConfig struct {
	MaxChunkSize int  `yaml:"max_chunk_size"`
	Overlap      *int `yaml:"overlap,omitempty"`
}

// OverlapSize returns the configured overlap, 0 when unset.
func (c ChunkerConfig) OverlapSize() int {
	if c.Overlap == nil {
		return 0
	}
	return *c.Overlap
}

// RetrievalConfig tunes ranking for one candidate source.
type RetrievalConfig struct {
	Strategy      string   `yaml:"strategy"`
	MinSimilarity *float64 `yaml:"min_similarity,omitempty"`
	TopK          int      `yaml:"top_k"`
	Recency       bool     `yaml:"recency"`
}

// RankingConfig holds the per-source retrieval settings and optional
// overrides of the static section weights.
type RankingConfig struct {
	Session        RetrievalConfig    `yaml:"session"`
	Pack           RetrievalConfig    `yaml:"pack"`
	SectionWeights map[string]float64 `yaml:"section_weights,omitempty"`
}

type KnowledgePackConfig struct {
	Path string `yaml:"path"`
}

type PreviewConfig struct {
	MaxChars int `yaml:"max_chars"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	StaffTokenEnv string `yaml:"staff_token_env"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder      EmbedderConfig      `yaml:"embedder"`
	Chunker       ChunkerConfig       `yaml:"chunker"`
	Ranking       RankingConfig       `yaml:"ranking"`
	KnowledgePack KnowledgePackConfig `yaml:"knowledge_pack"`
	Preview       PreviewConfig       `yaml:"preview"`
	Server        ServerConfig        `yaml:"server"`
	Log           logging.Config      `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/labrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/labrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings no component can act on.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case EmbedderHashing, EmbedderOpenAI:
	default:
		return fmt.Errorf("unknown embedder %q: %w", c.Embedder.Type, domain.ErrInvalidInput)
	}
	if c.Chunker.MaxChunkSize <= 0 || c.Chunker.OverlapSize() < 0 {
		return fmt.Errorf("chunker sizes must be positive: %w", domain.ErrInvalidInput)
	}
	for name, r := range map[string]RetrievalConfig{"session": c.Ranking.Session, "pack": c.Ranking.Pack} {
		switch r.Strategy {
		case StrategyIntentBoosted, StrategyStaticWeighted:
		default:
			return fmt.Errorf("ranking.%s: unknown strategy %q: %w", name, r.Strategy, domain.ErrInvalidInput)
		}
		if r.MinSimilarity != nil && (*r.MinSimilarity < 0 || *r.MinSimilarity > 1) {
			return fmt.Errorf("ranking.%s: min_similarity must be within [0,1]: %w", name, domain.ErrInvalidInput)
		}
	}
	for label := range c.Ranking.SectionWeights {
		if !domain.Label(label).Valid() {
			return fmt.Errorf("ranking.section_weights: unknown section %q: %w", label, domain.ErrInvalidInput)
		}
	}
	return nil
}

// OverlapSwallowsWindow reports a chunker setting that only advances one
// character per window.
func (c *AppConfig) OverlapSwallowsWindow() bool {
	return c.Chunker.OverlapSize() >= c.Chunker.MaxChunkSize
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "labrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder: EmbedderConfig{Type: EmbedderHashing},
		Ranking: RankingConfig{
			Session: RetrievalConfig{Strategy: StrategyIntentBoosted},
			Pack:    RetrievalConfig{Strategy: StrategyStaticWeighted, Recency: true},
		},
		KnowledgePack: KnowledgePackConfig{Path: filepath.Join("data", "pack.gob")},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = EmbedderHashing
	}
	if cfg.Embedder.Concurrency == 0 {
		cfg.Embedder.Concurrency = 8
	}
	if cfg.Embedder.Type == EmbedderOpenAI {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Embedder.Type == EmbedderHashing {
		if cfg.Embedder.Hashing == nil {
			cfg.Embedder.Hashing = &HashingEmbedderConfig{}
		}
		if cfg.Embedder.Hashing.Dimension == 0 {
			cfg.Embedder.Hashing.Dimension = 512
		}
	}
	if cfg.Chunker.MaxChunkSize == 0 {
		cfg.Chunker.MaxChunkSize = 1000
	}
	if cfg.Chunker.Overlap == nil {
		overlap := cfg.Chunker.MaxChunkSize / 5
		cfg.Chunker.Overlap = &overlap
	}
	applyRetrievalDefaults(&cfg.Ranking.Session, StrategyIntentBoosted, 5)
	applyRetrievalDefaults(&cfg.Ranking.Pack, StrategyStaticWeighted, 6)
	if cfg.Preview.MaxChars == 0 {
		cfg.Preview.MaxChars = 280
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.StaffTokenEnv == "" {
		cfg.Server.StaffTokenEnv = "LABRAG_STAFF_TOKEN"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = logging.FormatJSON
	}
}

func applyRetrievalDefaults(r *RetrievalConfig, strategy string, topK int) {
	if r.Strategy == "" {
		r.Strategy = strategy
	}
	if r.MinSimilarity == nil {
		v := 0.1
		r.MinSimilarity = &v
	}
	if r.TopK == 0 {
		r.TopK = topK
	}
}
