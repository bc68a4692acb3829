package scoring

import (
	"github.com/kailas-cloud/lexdex/internal/domain/chunk"
	"github.com/kailas-cloud/lexdex/internal/domain/legal"
)

// Candidate is one retrievable unit offered to the scorer.
type Candidate struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id,omitempty"`
	Section    string         `json:"section,omitempty"`
	Content    string         `json:"content"`
	Metadata   legal.Metadata `json:"metadata"`
	Embedding  []float32      `json:"-"`
}

// CandidateFromChunk adapts a persisted chunk.
func CandidateFromChunk(c *chunk.Chunk) Candidate {
	return Candidate{
		ID:         c.ID,
		DocumentID: c.DocumentID,
		Section:    c.Section,
		Content:    c.Content,
		Metadata:   c.Metadata.Metadata,
		Embedding:  c.Embedding,
	}
}

// ScoreBreakdown holds the five factors, each in [0,1].
type ScoreBreakdown struct {
	Semantic  float64 `json:"semantic"`
	Keyword   float64 `json:"keyword"`
	Metadata  float64 `json:"metadata"`
	Recency   float64 `json:"recency"`
	Authority float64 `json:"authority"`
}

// ScoredDocument is a ranked, explained candidate. It is built per query and never persisted.
type ScoredDocument struct {
	Candidate
	RelevanceScore float64        `json:"relevance_score"`
	Breakdown      ScoreBreakdown `json:"score_breakdown"`
	Explanation    string         `json:"explanation"`
}
