package metrics

import "github.com/prometheus/client_golang/prometheus"

// Chunking and scoring Prometheus metrics.
var (
	ChunkerDocumentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunker_documents_total",
			Help:      "Total number of documents chunked",
		},
	)

	ChunkerChunksPerDocument = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunker_chunks_per_document",
			Help:      "Number of chunks produced per document",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	ChunkerSectionsPerDocument = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunker_sections_per_document",
			Help:      "Number of structural sections detected per document",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	ScoringRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_requests_total",
			Help:      "Total number of scoring passes",
		},
		[]string{"rerank"}, // "none" / "diversity" / "mmr"
	)

	ScoringDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoring_duration_seconds",
			Help:      "Duration of a scoring pass in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1},
		},
	)

	ScoringCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoring_candidates",
			Help:      "Number of candidates per scoring pass",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 1000},
		},
	)

	ScoringSemanticFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_semantic_fallback_total",
			Help:      "Semantic factor computations that fell back to lexical overlap",
		},
		[]string{"reason"}, // "no_query_embedding" / "query_embed_error" / "on_demand_error" / "on_demand_disabled"
	)

	StatsRebuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_stats_rebuilds_total",
			Help:      "Corpus statistics rebuilds",
		},
	)

	IngestDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_documents_total",
			Help:      "Total number of ingested documents",
		},
		[]string{"status"}, // "created" / "replaced" / "invalid" / "error"
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers chunking, scoring and ingest metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(ChunkerDocumentsTotal)
	prometheus.MustRegister(ChunkerChunksPerDocument)
	prometheus.MustRegister(ChunkerSectionsPerDocument)
	prometheus.MustRegister(ScoringRequestsTotal)
	prometheus.MustRegister(ScoringDuration)
	prometheus.MustRegister(ScoringCandidates)
	prometheus.MustRegister(ScoringSemanticFallbackTotal)
	prometheus.MustRegister(StatsRebuildsTotal)
	prometheus.MustRegister(IngestDocumentsTotal)
	retrievalMetricsRegistered = true
}
