package ingest

import (
	"context"

	"github.com/kailas-cloud/lexdex/internal/domain/chunk"
	"github.com/kailas-cloud/lexdex/internal/domain/legal"
)

// Chunker cuts a document into chunks.
type Chunker interface {
	ChunkDocument(documentID, content string, meta legal.Metadata) []chunk.Chunk
}

// Repository persists chunk sets.
type Repository interface {
	SaveDocument(ctx context.Context, collection, docID string, meta legal.Metadata, chunks []chunk.Chunk) (bool, error)
	DeleteDocument(ctx context.Context, collection, docID string) error
}

// StatsInvalidator drops cached corpus statistics after the corpus changes.
type StatsInvalidator interface {
	Invalidate(collection string)
}
