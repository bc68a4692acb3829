// Package scoring ranks candidate chunks against a query with five weighted factors
// (semantic, keyword, metadata, recency, authority) and optional diversity or MMR re-ranking.
package scoring

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/metrics"
)

// Embedder vectorizes text for the semantic factor.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Scorer is safe for concurrent use. Corpus stats are swapped atomically.
type Scorer struct {
	cfg           Config
	queryEmbedder Embedder
	docEmbedder   Embedder
	stats         atomic.Pointer[DocumentStats]
	logger        *zap.Logger
}

// New validates cfg and creates a scorer. embedder may be nil, which forces the lexical
// semantic fallback.
func New(cfg Config, embedder Embedder, logger *zap.Logger) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.AuthorityWeights == nil {
		cfg.AuthorityWeights = DefaultAuthorityWeights()
	}
	if cfg.AreaWeights == nil {
		cfg.AreaWeights = DefaultAreaWeights()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{
		cfg:           cfg,
		queryEmbedder: embedder,
		docEmbedder:   embedder,
		logger:        logger,
	}, nil
}

// WithDocumentEmbedder sets the embedder used for on-demand candidate vectors
// when it differs from the query embedder (e.g. another instruction prefix).
func (s *Scorer) WithDocumentEmbedder(e Embedder) *Scorer {
	s.docEmbedder = e
	return s
}

// InitializeStats rebuilds the corpus snapshot from docs and publishes it.
func (s *Scorer) InitializeStats(docs []Candidate) *DocumentStats {
	stats := BuildStats(docs)
	s.stats.Store(stats)
	metrics.StatsRebuildsTotal.Inc()
	return stats
}

// Stats returns the published snapshot, or nil before InitializeStats.
func (s *Scorer) Stats() *DocumentStats { return s.stats.Load() }

// ScoreDocuments ranks docs using the published corpus snapshot.
func (s *Scorer) ScoreDocuments(
	ctx context.Context, query string, docs []Candidate, sc SearchContext,
) ([]ScoredDocument, error) {
	return s.ScoreWithStats(ctx, query, docs, sc, s.stats.Load())
}

// ScoreWithStats ranks docs against an explicit snapshot; nil stats selects the TF-IDF path.
// The only error is an invalid SearchContext: embedding failures degrade to lexical similarity.
func (s *Scorer) ScoreWithStats(
	ctx context.Context, query string, docs []Candidate, sc SearchContext, stats *DocumentStats,
) ([]ScoredDocument, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return []ScoredDocument{}, nil
	}
	if stats != nil && stats.TotalDocuments == 0 {
		stats = nil
	}

	start := time.Now()
	f := s.extractFeatures(ctx, query, stats)

	views := make([]view, len(docs))
	for i := range docs {
		views[i] = newView(docs[i])
	}
	s.embedMissing(ctx, &f, views)

	now := s.cfg.Now()
	items := make([]ranked, len(views))
	for i := range views {
		v := &views[i]
		b := ScoreBreakdown{
			Semantic:  semantic(&f, v),
			Keyword:   s.keyword(&f, v, stats),
			Metadata:  s.metadata(&f, v.doc.Metadata),
			Recency:   recency(sc, v.doc.Metadata, now),
			Authority: s.authority(v.doc.Metadata),
		}
		doc := v.doc
		doc.Embedding = v.embedding
		items[i] = ranked{
			ScoredDocument: ScoredDocument{
				Candidate:      doc,
				RelevanceScore: combine(b, s.cfg.Weights),
				Breakdown:      b,
				Explanation:    explain(b, sc, presentPhrases(f.phrases, v.doc.Content)),
			},
			terms: v.terms,
		}
	}

	sortByScore(items)
	switch {
	case sc.EnableDiversity:
		diversify(items)
	case sc.EnableMMR:
		items = mmr(items, s.cfg.MMRLambda, s.cfg.MMRMaxResults)
	}

	out := make([]ScoredDocument, len(items))
	for i := range items {
		out[i] = items[i].ScoredDocument
	}

	metrics.ScoringRequestsTotal.WithLabelValues(sc.rerankLabel()).Inc()
	metrics.ScoringCandidates.Observe(float64(len(docs)))
	metrics.ScoringDuration.Observe(time.Since(start).Seconds())

	s.logger.Debug("Documents scored",
		zap.Int("candidates", len(docs)),
		zap.Int("results", len(out)),
		zap.Bool("bm25", stats != nil),
		zap.Bool("query_embedding", f.embedding != nil),
		zap.String("rerank", sc.rerankLabel()),
		zap.Duration("duration", time.Since(start)),
	)

	return out, nil
}

// embedMissing fills candidate vectors in one batch call when the query has a vector.
// Failures leave the candidates on the lexical path.
func (s *Scorer) embedMissing(ctx context.Context, f *queryFeatures, views []view) {
	if f.embedding == nil {
		if len(f.terms) > 0 {
			reason := "no_query_embedding"
			if f.embedFailed {
				reason = "query_embed_error"
			}
			metrics.ScoringSemanticFallbackTotal.WithLabelValues(reason).Inc()
		}
		return
	}

	var missing []int
	for i := range views {
		if len(views[i].embedding) == 0 {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return
	}
	if !s.cfg.AllowOnDemandEmbedding || s.docEmbedder == nil {
		metrics.ScoringSemanticFallbackTotal.WithLabelValues("on_demand_disabled").Inc()
		return
	}

	texts := make([]string, len(missing))
	for k, i := range missing {
		texts[k] = views[i].doc.Content
	}
	res, err := domain.EmbedMany(ctx, s.docEmbedder, texts)
	if err != nil {
		s.logger.Warn("On-demand candidate embedding failed, using lexical similarity",
			zap.Int("candidates", len(missing)),
			zap.Error(err),
		)
		metrics.ScoringSemanticFallbackTotal.WithLabelValues("on_demand_error").Inc()
		return
	}
	for k, i := range missing {
		views[i].embedding = res.Embeddings[k]
	}
}

func presentPhrases(phrases []string, content string) []string {
	if len(phrases) == 0 {
		return nil
	}
	lower := strings.ToLower(content)
	var out []string
	for _, p := range phrases {
		if strings.Contains(lower, strings.ToLower(p)) {
			out = append(out, p)
		}
	}
	return out
}
