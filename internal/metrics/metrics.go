// Package metrics exposes retrieval counters and latencies to Prometheus.
//
// Scraping /metrics yields series such as:
//
//	labrag_retrievals_total{source="session"} 42
//	labrag_retrieval_empty_total{source="pack"} 3
//	labrag_embedding_failures_total{stage="chunk"} 1
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "labrag"

// Retrieval sources.
const (
	SourceSession = "session"
	SourcePack    = "pack"
)

// Embedding stages.
const (
	StageChunk = "chunk"
	StageQuery = "query"
)

// Metrics holds the collectors used by the retrieval pipeline. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	retrievals        *prometheus.CounterVec
	emptyRetrievals   *prometheus.CounterVec
	embeddingFailures *prometheus.CounterVec
	chunksIngested    prometheus.Counter
	retrievalDuration *prometheus.HistogramVec
}

// Option configures Metrics.
type Option func(*Metrics)

// WithRegistry registers the collectors on an existing registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Metrics) {
		m.registry = registry
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(m *Metrics) {
		m.registry.MustRegister(collectors.NewGoCollector())
		m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
}

func New(opts ...Option) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	for _, opt := range opts {
		opt(m)
	}

	m.retrievals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retrievals_total",
		Help:      "Retrieval requests served, by candidate source.",
	}, []string{"source"})
	m.emptyRetrievals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retrieval_empty_total",
		Help:      "Retrievals that returned no evidence.",
	}, []string{"source"})
	m.embeddingFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "embedding_failures_total",
		Help:      "Embedding service failures, by pipeline stage.",
	}, []string{"stage"})
	m.chunksIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chunks_ingested_total",
		Help:      "Chunks embedded and stored for retrieval.",
	})
	m.retrievalDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "retrieval_duration_seconds",
		Help:      "Wall time of one retrieval including the query embedding.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"source"})

	m.registry.MustRegister(m.retrievals, m.emptyRetrievals, m.embeddingFailures, m.chunksIngested, m.retrievalDuration)
	return m
}

// ObserveRetrieval records one retrieval and whether it came back empty.
func (m *Metrics) ObserveRetrieval(source string, elapsed time.Duration, results int) {
	if m == nil {
		return
	}
	m.retrievals.WithLabelValues(source).Inc()
	m.retrievalDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if results == 0 {
		m.emptyRetrievals.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) EmbeddingFailed(stage string) {
	if m == nil {
		return
	}
	m.embeddingFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) ChunksIngested(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.chunksIngested.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
