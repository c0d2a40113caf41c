package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"labrag/internal/domain"
	"labrag/internal/metrics"
)

const defaultConcurrency = 8

// Gateway wraps an Embedder with the error contract the pipeline relies on
// and embeds chunk sets with bounded parallelism.
type Gateway struct {
	embedder    Embedder
	concurrency int
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

type GatewayOption func(*Gateway)

func WithConcurrency(n int) GatewayOption {
	return func(g *Gateway) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

func WithLogger(logger zerolog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) GatewayOption {
	return func(g *Gateway) {
		g.metrics = m
	}
}

func NewGateway(embedder Embedder, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		embedder:    embedder,
		concurrency: defaultConcurrency,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ModelInfo identifies the embedding space, e.g. "openai" or "hashing".
func (g *Gateway) ModelInfo() string { return g.embedder.Name() }

func (g *Gateway) Dimension() int { return g.embedder.Dimension() }

// Embed embeds one text. Every failure, including an empty vector, is
// reported as domain.ErrEmbeddingUnavailable.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embed: %w", domain.ErrInvalidInput)
	}
	vec, err := g.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrEmbeddingUnavailable, g.embedder.Name(), err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: %s returned an empty vector", domain.ErrEmbeddingUnavailable, g.embedder.Name())
	}
	return vec, nil
}

// EmbedQuery embeds a retrieval query and records failures under the query stage.
func (g *Gateway) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	vec, err := g.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			g.metrics.EmbeddingFailed(metrics.StageQuery)
		}
		return nil, err
	}
	return vec, nil
}

// EmbedChunks fills in missing embeddings in place. A chunk whose call fails
// keeps a nil embedding and is counted in the returned failure total; only
// context cancellation aborts the batch.
func (g *Gateway) EmbedChunks(ctx context.Context, chunks []domain.Chunk) (failed int, err error) {
	failures := make([]bool, len(chunks))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for i := range chunks {
		if chunks[i].Embedded() {
			continue
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			vec, err := g.Embed(egCtx, chunks[i].Text)
			if err != nil {
				failures[i] = true
				g.metrics.EmbeddingFailed(metrics.StageChunk)
				g.logger.Warn().
					Err(err).
					Str("document_id", chunks[i].DocumentID).
					Str("chunk_id", chunks[i].ID).
					Msg("chunk embedding failed, excluding from retrieval")
				return nil
			}
			chunks[i].Embedding = vec
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	for _, f := range failures {
		if f {
			failed++
		}
	}
	return failed, nil
}
