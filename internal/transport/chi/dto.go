package chi

import (
	"time"

	"github.com/kailas-cloud/lexdex/internal/domain/chunk"
	"github.com/kailas-cloud/lexdex/internal/domain/legal"
	"github.com/kailas-cloud/lexdex/internal/usecase/chunker"
	"github.com/kailas-cloud/lexdex/internal/usecase/scoring"
)

// IngestDocumentRequest is the body of POST /collections/{collection}/documents.
type IngestDocumentRequest struct {
	ID       string         `json:"id,omitempty"`
	Content  string         `json:"content"`
	Metadata legal.Metadata `json:"metadata"`
}

// IngestDocumentResponse reports the stored document.
type IngestDocumentResponse struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Created    bool   `json:"created"`
	Chunks     int    `json:"chunks"`
	Embedded   bool   `json:"embedded"`
}

// DocumentResponse is a stored document with its chunks. Embeddings are omitted.
type DocumentResponse struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Metadata   legal.Metadata `json:"metadata"`
	Chunks     []chunk.Chunk  `json:"chunks"`
	IngestedAt time.Time      `json:"ingested_at"`
}

// ListResponse is a plain list of names or ids.
type ListResponse struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

// SearchRequest is the body of POST /collections/{collection}/search.
type SearchRequest struct {
	Query    string  `json:"query"`
	Limit    int     `json:"limit,omitempty"`
	MinScore float64 `json:"min_score,omitempty"`
	scoring.SearchContext
}

// SearchResponse carries ranked, explained chunks.
type SearchResponse struct {
	Items      []scoring.ScoredDocument `json:"items"`
	Total      int                      `json:"total"`
	Candidates int                      `json:"candidates"`
	TookMS     int64                    `json:"took_ms"`
}

// ChunkPreviewRequest is the body of POST /chunk.
type ChunkPreviewRequest struct {
	DocumentID string         `json:"document_id,omitempty"`
	Content    string         `json:"content"`
	Metadata   legal.Metadata `json:"metadata"`
}

// ChunkPreviewResponse shows how a document would be parsed and cut, without storing it.
type ChunkPreviewResponse struct {
	Structure chunker.DocumentStructure `json:"structure"`
	Chunks    []chunk.Chunk             `json:"chunks"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
