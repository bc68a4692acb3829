// Package search answers relevance queries over a stored collection.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/usecase/scoring"
)

// Request is one search query.
type Request struct {
	Query    string
	Limit    int
	MinScore float64
	Context  scoring.SearchContext
}

// Response carries the ranked results and how many candidates were scored.
type Response struct {
	Results    []scoring.ScoredDocument
	Candidates int
	Took       time.Duration
}

// Service handles collection search.
type Service struct {
	chunks       ChunkLister
	scorer       Scorer
	stats        *StatsCache
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

// New creates a search service. stats may be shared with the ingestion pipeline.
func New(chunks ChunkLister, scorer Scorer, stats *StatsCache, logger *zap.Logger) *Service {
	if stats == nil {
		stats = NewStatsCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		chunks:       chunks,
		scorer:       scorer,
		stats:        stats,
		defaultLimit: 10,
		maxLimit:     100,
		logger:       logger,
	}
}

// WithLimits configures result count limits.
func (s *Service) WithLimits(defaultLimit, maxLimit int) *Service {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	return s
}

// Search loads the collection, scores every chunk and returns the top results.
func (s *Service) Search(ctx context.Context, collection string, req Request) (Response, error) {
	start := time.Now()

	if err := domain.ValidateCollectionName(collection); err != nil {
		return Response{}, err
	}
	if strings.TrimSpace(req.Query) == "" {
		return Response{}, fmt.Errorf("query is required: %w", domain.ErrInvalidRequest)
	}
	if req.Limit < 0 || req.Limit > s.maxLimit {
		return Response{}, fmt.Errorf("limit must be between 1 and %d: %w", s.maxLimit, domain.ErrInvalidRequest)
	}
	if req.MinScore < 0 || req.MinScore > 1 {
		return Response{}, fmt.Errorf("min_score must be within [0,1]: %w", domain.ErrInvalidRequest)
	}
	if err := req.Context.Validate(); err != nil {
		return Response{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	limit := req.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}

	// Read the generation before loading so an ingest that lands mid-load rejects the rebuild.
	cached, gen := s.stats.Get(collection)

	chunks, err := s.chunks.ListChunks(ctx, collection)
	if err != nil {
		return Response{}, fmt.Errorf("load collection: %w", err)
	}

	candidates := make([]scoring.Candidate, len(chunks))
	for i := range chunks {
		candidates[i] = scoring.CandidateFromChunk(&chunks[i])
	}

	stats := s.snapshot(collection, cached, gen, candidates)

	results, err := s.scorer.ScoreWithStats(ctx, req.Query, candidates, req.Context, stats)
	if err != nil {
		return Response{}, fmt.Errorf("score: %w", err)
	}

	if req.MinScore > 0 {
		filtered := results[:0]
		for _, r := range results {
			if r.RelevanceScore >= req.MinScore {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}
	if len(results) > limit {
		results = results[:limit]
	}

	return Response{Results: results, Candidates: len(candidates), Took: time.Since(start)}, nil
}

// snapshot returns the cached stats or rebuilds them from the candidates just loaded.
// gen is the cache generation read before the candidates were loaded; a stale rebuild
// still scores this query but is not published.
func (s *Service) snapshot(
	collection string, cached *scoring.DocumentStats, gen uint64, candidates []scoring.Candidate,
) *scoring.DocumentStats {
	if cached != nil {
		return cached
	}

	stats := scoring.BuildStats(candidates)
	if s.stats.Put(collection, gen, stats) {
		s.logger.Debug("Corpus stats rebuilt",
			zap.String("collection", collection),
			zap.Int("documents", stats.TotalDocuments),
			zap.Int("terms", len(stats.TermDocumentFrequencies)),
		)
	}
	return stats
}
