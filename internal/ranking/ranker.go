// Package ranking scores candidate chunks against a query embedding and
// returns the top-K evidence set.
package ranking

import (
	"sort"
	"time"

	"labrag/internal/domain"
	"labrag/internal/embedding"
)

const (
	DefaultMinSimilarity = 0.1
	DefaultTopK          = 5
)

// Options configures one ranking pass.
type Options struct {
	Strategy      Strategy
	MinSimilarity float64
	TopK          int
	// Recency enables upload-age weighting; Now defaults to time.Now.
	Recency bool
	Now     time.Time
}

// Query is the embedded query plus its inferred intents.
type Query struct {
	Embedding []float64
	Intents   []domain.Label
}

// Normalize min-max scales sims into [0,1]. A set whose values are all
// equal normalizes to all ones.
func Normalize(sims []float64) []float64 {
	out := make([]float64, len(sims))
	if len(sims) == 0 {
		return out
	}
	lo, hi := sims[0], sims[0]
	for _, s := range sims[1:] {
		lo = min(lo, s)
		hi = max(hi, s)
	}
	span := hi - lo
	for i, s := range sims {
		if span == 0 {
			out[i] = 1
			continue
		}
		out[i] = (s - lo) / span
	}
	return out
}

// Rank scores every embedded candidate, drops those whose normalized
// similarity is under MinSimilarity, and returns the best TopK in
// descending score order. Ties keep candidate order. Candidates without an
// embedding are ignored.
func Rank(candidates []domain.Chunk, q Query, opts Options) []domain.ScoredChunk {
	if len(q.Embedding) == 0 {
		return []domain.ScoredChunk{}
	}
	if opts.Strategy.Kind == "" {
		opts.Strategy = Boosted()
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	embedded := make([]domain.Chunk, 0, len(candidates))
	for _, c := range candidates {
		if c.Embedded() {
			embedded = append(embedded, c)
		}
	}
	if len(embedded) == 0 {
		return []domain.ScoredChunk{}
	}

	sims := make([]float64, len(embedded))
	for i, c := range embedded {
		sims[i] = embedding.CosineSimilarity(q.Embedding, c.Embedding)
	}
	normalized := Normalize(sims)

	scored := make([]domain.ScoredChunk, 0, len(embedded))
	for i, c := range embedded {
		if normalized[i] < opts.MinSimilarity {
			continue
		}
		sectionWeight := opts.Strategy.SectionWeight(c.Section, q.Intents)
		recencyWeight := 1.0
		if opts.Recency {
			recencyWeight = RecencyWeight(c.DocumentUploadedAt, opts.Now)
		}
		scored = append(scored, domain.ScoredChunk{
			Chunk:         c,
			Similarity:    sims[i],
			Normalized:    normalized[i],
			SectionWeight: sectionWeight,
			RecencyWeight: recencyWeight,
			Score:         normalized[i] * sectionWeight * recencyWeight,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > opts.TopK {
		scored = scored[:opts.TopK]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}

// Merge combines independently ranked result sets by score, keeping the
// order of earlier sets on ties, and re-ranks the best topK.
func Merge(topK int, sets ...[]domain.ScoredChunk) []domain.ScoredChunk {
	if topK <= 0 {
		topK = DefaultTopK
	}
	merged := []domain.ScoredChunk{}
	for _, set := range sets {
		merged = append(merged, set...)
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	if len(merged) > topK {
		merged = merged[:topK]
	}
	for i := range merged {
		merged[i].Rank = i + 1
	}
	return merged
}
