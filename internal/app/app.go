// Package app assembles the retrieval pipeline from configuration.
package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"labrag/internal/chunker"
	"labrag/internal/config"
	"labrag/internal/domain"
	"labrag/internal/embedding"
	"labrag/internal/embedding/hashing"
	"labrag/internal/embedding/openai"
	"labrag/internal/knowledgepack"
	"labrag/internal/logging"
	"labrag/internal/metrics"
	"labrag/internal/preview"
	"labrag/internal/ranking"
	"labrag/internal/service"
	"labrag/internal/vectorstore/memory"
)

// NewLogger builds the process logger from cfg.Log.
func NewLogger(cfg *config.AppConfig, w io.Writer) (zerolog.Logger, error) {
	return logging.New(cfg.Log, w)
}

// NewEmbedder selects the configured embedder implementation.
func NewEmbedder(cfg config.EmbedderConfig) (embedding.Embedder, error) {
	switch cfg.Type {
	case config.EmbedderHashing, "":
		dim := 0
		if cfg.Hashing != nil {
			dim = cfg.Hashing.Dimension
		}
		return hashing.NewEmbedder(dim), nil
	case config.EmbedderOpenAI:
		if cfg.OpenAI == nil {
			return nil, errors.New("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			Timeout:   cfg.OpenAI.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

// NewGateway wraps the configured embedder.
func NewGateway(cfg *config.AppConfig, logger zerolog.Logger, m *metrics.Metrics) (*embedding.Gateway, error) {
	emb, err := NewEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}
	return embedding.NewGateway(emb,
		embedding.WithConcurrency(cfg.Embedder.Concurrency),
		embedding.WithLogger(logger),
		embedding.WithMetrics(m),
	), nil
}

// NewChunker returns the window chunker, warning when the overlap leaves
// the cursor crawling one character at a time.
func NewChunker(cfg *config.AppConfig, logger zerolog.Logger) *chunker.WindowChunker {
	if cfg.OverlapSwallowsWindow() {
		logger.Warn().
			Int("max_chunk_size", cfg.Chunker.MaxChunkSize).
			Int("overlap", cfg.Chunker.OverlapSize()).
			Msg("chunk overlap is not smaller than the window")
	}
	return chunker.NewWindowChunker(cfg.Chunker.MaxChunkSize, cfg.Chunker.OverlapSize())
}

// RankingOptions translates one retrieval section of the config.
func RankingOptions(r config.RetrievalConfig, weights map[string]float64) (ranking.Options, error) {
	kind, err := ranking.ParseKind(r.Strategy)
	if err != nil {
		return ranking.Options{}, err
	}
	strategy := ranking.Boosted()
	if kind == ranking.StaticWeighted {
		table := ranking.DefaultSectionWeights()
		for label, w := range weights {
			table[domain.Label(label)] = w
		}
		strategy = ranking.Static(table)
	}
	opts := ranking.Options{
		Strategy:      strategy,
		MinSimilarity: ranking.DefaultMinSimilarity,
		TopK:          r.TopK,
		Recency:       r.Recency,
	}
	if r.MinSimilarity != nil {
		opts.MinSimilarity = *r.MinSimilarity
	}
	return opts, nil
}

// NewService wires the full retrieval service. A missing knowledge pack is
// logged and leaves pack retrieval disabled.
func NewService(cfg *config.AppConfig, logger zerolog.Logger, m *metrics.Metrics) (*service.RetrievalService, error) {
	gateway, err := NewGateway(cfg, logger, m)
	if err != nil {
		return nil, err
	}
	sessionOpts, err := RankingOptions(cfg.Ranking.Session, cfg.Ranking.SectionWeights)
	if err != nil {
		return nil, fmt.Errorf("ranking.session: %w", err)
	}
	packOpts, err := RankingOptions(cfg.Ranking.Pack, cfg.Ranking.SectionWeights)
	if err != nil {
		return nil, fmt.Errorf("ranking.pack: %w", err)
	}

	opts := []service.Option{
		service.WithSessionRanking(sessionOpts),
		service.WithPackRanking(packOpts),
		service.WithLogger(logger),
		service.WithMetrics(m),
	}
	if cfg.KnowledgePack.Path != "" {
		pack, err := knowledgepack.LoadFile(cfg.KnowledgePack.Path)
		switch {
		case err == nil:
			logger.Info().
				Str("path", cfg.KnowledgePack.Path).
				Int("chunks", pack.Len()).
				Str("model", pack.ModelInfo()).
				Msg("knowledge pack loaded")
			opts = append(opts, service.WithPack(pack))
		case errors.Is(err, domain.ErrPackUnavailable):
			logger.Warn().Str("path", cfg.KnowledgePack.Path).Msg("knowledge pack not found, pack retrieval disabled")
		default:
			return nil, fmt.Errorf("load knowledge pack: %w", err)
		}
	}

	return service.NewRetrievalService(
		NewChunker(cfg, logger),
		gateway,
		memory.NewStorage(),
		preview.New(cfg.Preview.MaxChars),
		opts...,
	), nil
}
