// Package chunk defines the retrieval unit produced by the hierarchical chunker.
package chunk

import "github.com/kailas-cloud/lexdex/internal/domain/legal"

// RelationType names the structural link between two chunks.
type RelationType string

const (
	// Previous links to the chunk immediately before in document order.
	Previous RelationType = "previous"
	// Next links to the chunk immediately after in document order.
	Next RelationType = "next"
	// Parent links to the first chunk of the enclosing section.
	Parent RelationType = "parent"
	// Child links to a chunk of a directly nested section.
	Child RelationType = "child"
	// Sibling links to a chunk of another section under the same parent.
	Sibling RelationType = "sibling"
)

// Strength returns the fixed weight of the relation type.
func (t RelationType) Strength() float64 {
	switch t {
	case Previous, Next:
		return 1.0
	case Parent:
		return 0.8
	case Child:
		return 0.6
	case Sibling:
		return 0.5
	default:
		return 0
	}
}

// Relationship is a directed, weighted edge to another chunk of the same document.
type Relationship struct {
	Type     RelationType `json:"type"`
	ChunkID  string       `json:"chunk_id"`
	Strength float64      `json:"strength"`
}

// NewRelationship builds a relationship with the strength fixed for its type.
func NewRelationship(t RelationType, chunkID string) Relationship {
	return Relationship{Type: t, ChunkID: chunkID, Strength: t.Strength()}
}

// Metadata is the document metadata plus positional bookkeeping for one chunk.
type Metadata struct {
	legal.Metadata
	SectionID   string `json:"section_id"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
	HasOverlap  bool   `json:"has_overlap"`
}

// Chunk is a size-bounded slice of one section of a legal document.
// StartChar and EndChar are byte offsets into the section text the chunk was cut from: the
// heading line, a newline, then the body (chunker.Section.Text). They slice that string
// directly; chunk sizes count runes, so on accented text the two units differ.
type Chunk struct {
	ID            string         `json:"id"`
	DocumentID    string         `json:"document_id"`
	Content       string         `json:"content"`
	Section       string         `json:"section"`
	SectionType   string         `json:"section_type"`
	Level         int            `json:"level"`
	StartChar     int            `json:"start_char"`
	EndChar       int            `json:"end_char"`
	Metadata      Metadata       `json:"metadata"`
	Embedding     []float32      `json:"embedding,omitempty"`
	Importance    float64        `json:"importance"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

// RelationsOf returns the target chunk ids of every relationship of type t.
func (c *Chunk) RelationsOf(t RelationType) []string {
	var ids []string
	for _, r := range c.Relationships {
		if r.Type == t {
			ids = append(ids, r.ChunkID)
		}
	}
	return ids
}

// HasEmbedding reports whether an embedding has been attached.
func (c *Chunk) HasEmbedding() bool { return len(c.Embedding) > 0 }
