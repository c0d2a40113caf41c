package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"labrag/internal/domain"
	"labrag/internal/embedding"
	"labrag/internal/intent"
	"labrag/internal/knowledgepack"
	"labrag/internal/metrics"
	"labrag/internal/parser"
	"labrag/internal/preview"
	"labrag/internal/ranking"
	"labrag/internal/segmenter"
	"labrag/internal/vectorstore"
)

// DocumentReport summarizes the ingestion of one document.
type DocumentReport struct {
	DocumentID string `json:"document_id"`
	Label      string `json:"label"`
	Sections   int    `json:"sections"`
	Chunks     int    `json:"chunks"`
	Embedded   int    `json:"embedded"`
	Failed     int    `json:"failed"`
}

// IngestReport is returned instead of an error when only some chunks embed.
type IngestReport struct {
	Documents []DocumentReport `json:"documents"`
}

// Failed is the total number of chunks left out for embedding failures.
func (r IngestReport) Failed() int {
	n := 0
	for _, d := range r.Documents {
		n += d.Failed
	}
	return n
}

// RetrievalService turns documents into embedded chunks and ranks them
// against queries.
type RetrievalService struct {
	chunker   domain.Chunker
	gateway   *embedding.Gateway
	store     vectorstore.Storage
	previewer *preview.Previewer
	pack      *knowledgepack.Repository
	session   ranking.Options
	packOpts  ranking.Options
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*RetrievalService)

// WithPack attaches the built-in knowledge pack.
func WithPack(pack *knowledgepack.Repository) Option {
	return func(s *RetrievalService) { s.pack = pack }
}

func WithSessionRanking(opts ranking.Options) Option {
	return func(s *RetrievalService) { s.session = opts }
}

func WithPackRanking(opts ranking.Options) Option {
	return func(s *RetrievalService) { s.packOpts = opts }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *RetrievalService) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *RetrievalService) { s.metrics = m }
}

// WithClock overrides time.Now for recency weighting.
func WithClock(now func() time.Time) Option {
	return func(s *RetrievalService) { s.now = now }
}

func NewRetrievalService(chunker domain.Chunker, gateway *embedding.Gateway, store vectorstore.Storage, previewer *preview.Previewer, opts ...Option) *RetrievalService {
	s := &RetrievalService{
		chunker:   chunker,
		gateway:   gateway,
		store:     store,
		previewer: previewer,
		session: ranking.Options{
			Strategy:      ranking.Boosted(),
			MinSimilarity: ranking.DefaultMinSimilarity,
			TopK:          ranking.DefaultTopK,
		},
		packOpts: ranking.Options{
			Strategy:      ranking.Static(nil),
			MinSimilarity: ranking.DefaultMinSimilarity,
			TopK:          6,
			Recency:       true,
		},
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pack != nil && !s.pack.Compatible(gateway.ModelInfo(), gateway.Dimension()) {
		s.logger.Error().
			Str("pack_model", s.pack.ModelInfo()).
			Str("embedder", gateway.ModelInfo()).
			Msg("knowledge pack was built with a different embedder, disabling it")
		s.pack = nil
	}
	return s
}

// HasPack reports whether pack retrieval is available.
func (s *RetrievalService) HasPack() bool { return s.pack != nil }

// BuildChunks runs a document through parsing (structured text only),
// segmentation and windowing. The chunks carry no embeddings yet.
func (s *RetrievalService) BuildChunks(doc domain.Document) ([]domain.Chunk, []domain.Section) {
	text := doc.Content
	if doc.Format == domain.FormatStructured {
		text = parser.Flatten(parser.Parse(text))
	}
	sections := segmenter.Segment(text)
	return s.chunker.Chunk(doc, sections), sections
}

// Ingest builds, embeds and stores each document in the session, replacing
// earlier uploads with the same ID. Chunks that fail to embed are left out
// and counted in the report.
func (s *RetrievalService) Ingest(ctx context.Context, session string, docs ...domain.Document) (IngestReport, error) {
	var report IngestReport
	if session == "" {
		return report, fmt.Errorf("session id is required: %w", domain.ErrInvalidInput)
	}
	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		if doc.Label == "" {
			doc.Label = doc.ID
		}
		chunks, sections := s.BuildChunks(doc)
		failed, err := s.gateway.EmbedChunks(ctx, chunks)
		if err != nil {
			return report, fmt.Errorf("ingest %s: %w", doc.Label, err)
		}

		embedded := chunks[:0]
		for _, ch := range chunks {
			if ch.Embedded() {
				embedded = append(embedded, ch)
			}
		}
		if err := s.store.Put(session, doc.ID, embedded); err != nil {
			return report, fmt.Errorf("store %s: %w", doc.Label, err)
		}
		s.metrics.ChunksIngested(len(embedded))

		s.logger.Info().
			Str("session_id", session).
			Str("document_id", doc.ID).
			Int("sections", len(sections)).
			Int("chunks", len(embedded)+failed).
			Int("failed", failed).
			Msg("document ingested")

		report.Documents = append(report.Documents, DocumentReport{
			DocumentID: doc.ID,
			Label:      doc.Label,
			Sections:   len(sections),
			Chunks:     len(embedded) + failed,
			Embedded:   len(embedded),
			Failed:     failed,
		})
	}
	return report, nil
}

// Retrieve ranks chunks against query with opts. A query that cannot be
// embedded yields no evidence rather than an error.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, chunks []domain.Chunk, opts ranking.Options) []domain.ScoredChunk {
	q, ok := s.embedQuery(ctx, query)
	if !ok {
		return []domain.ScoredChunk{}
	}
	return ranking.Rank(chunks, q, s.withClock(opts))
}

// RetrieveSession ranks the session's documents and, when includePack is
// set, merges in the knowledge pack ranked with its own strategy. topK <= 0
// uses the configured default.
func (s *RetrievalService) RetrieveSession(ctx context.Context, session, query string, topK int, includePack bool) ([]domain.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	start := time.Now()
	chunks, err := s.store.Chunks(session)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", session, err)
	}

	sessionOpts := s.withClock(s.session)
	if topK > 0 {
		sessionOpts.TopK = topK
	}
	results := []domain.ScoredChunk{}
	if q, ok := s.embedQuery(ctx, query); ok {
		results = ranking.Rank(chunks, q, sessionOpts)
		if includePack && s.pack != nil {
			packOpts := s.withClock(s.packOpts)
			packOpts.TopK = sessionOpts.TopK
			results = ranking.Merge(sessionOpts.TopK, results, ranking.Rank(s.pack.Chunks(), q, packOpts))
		}
	}
	s.observe(metrics.SourceSession, session, start, len(results))
	return results, nil
}

// RetrievePack ranks the knowledge pack alone.
func (s *RetrievalService) RetrievePack(ctx context.Context, query string, topK int) ([]domain.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if s.pack == nil {
		return nil, domain.ErrPackUnavailable
	}
	start := time.Now()
	opts := s.withClock(s.packOpts)
	if topK > 0 {
		opts.TopK = topK
	}
	results := s.Retrieve(ctx, query, s.pack.Chunks(), opts)
	s.observe(metrics.SourcePack, "", start, len(results))
	return results, nil
}

// Documents lists the document IDs held for a session.
func (s *RetrievalService) Documents(session string) ([]string, error) {
	return s.store.Documents(session)
}

// RemoveDocument drops one document from the session.
func (s *RetrievalService) RemoveDocument(session, documentID string) error {
	return s.store.DeleteDocument(session, documentID)
}

// ClearSession discards all document context of the session.
func (s *RetrievalService) ClearSession(session string) error {
	return s.store.Clear(session)
}

func (s *RetrievalService) embedQuery(ctx context.Context, query string) (ranking.Query, bool) {
	vec, err := s.gateway.EmbedQuery(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			s.logger.Warn().Err(err).Msg("query embedding failed, answering without evidence")
		}
		return ranking.Query{}, false
	}
	if isZero(vec) {
		s.logger.Debug().Str("query", query).Msg("query has no indexable terms")
		return ranking.Query{}, false
	}
	return ranking.Query{Embedding: vec, Intents: intent.Classify(query)}, true
}

func (s *RetrievalService) withClock(opts ranking.Options) ranking.Options {
	if opts.Now.IsZero() {
		opts.Now = s.now()
	}
	return opts
}

func (s *RetrievalService) observe(source, session string, start time.Time, n int) {
	s.metrics.ObserveRetrieval(source, time.Since(start), n)
	if n == 0 {
		s.logger.Debug().Str("source", source).Str("session_id", session).Msg("retrieval returned no evidence")
	}
}

func isZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

// DocumentID derives a stable document identifier from a path or filename.
func DocumentID(name string) string {
	h := sha1.Sum([]byte(name))
	return hex.EncodeToString(h[:8])
}
