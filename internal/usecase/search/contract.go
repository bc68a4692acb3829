package search

import (
	"context"

	"github.com/kailas-cloud/lexdex/internal/domain/chunk"
	"github.com/kailas-cloud/lexdex/internal/usecase/scoring"
)

// ChunkLister loads every chunk of a collection.
type ChunkLister interface {
	ListChunks(ctx context.Context, collection string) ([]chunk.Chunk, error)
}

// Scorer ranks candidates against an explicit corpus snapshot.
type Scorer interface {
	ScoreWithStats(
		ctx context.Context, query string, docs []scoring.Candidate,
		sc scoring.SearchContext, stats *scoring.DocumentStats,
	) ([]scoring.ScoredDocument, error)
}
