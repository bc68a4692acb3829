package chunker

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain/chunk"
	"github.com/kailas-cloud/lexdex/internal/domain/legal"
)

const titledLaw = "TÍTULO I\nArtículo 1.- Esta ley regula el derecho civil.\nArtículo 2.- Se aplica a todo el territorio."

func newTestChunker(t *testing.T, cfg Config) *Chunker {
	t.Helper()
	c, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// longSection builds n sentences of about 83 characters each.
func longSection(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Oración %02d de prueba con texto suficiente para medir el tamaño de cada fragmento. ", i)
	}
	return strings.TrimSpace(b.String())
}

func chunkDoc(t *testing.T, c *Chunker, content string) []chunk.Chunk {
	t.Helper()
	return c.ChunkDocument("doc-1", content, legal.Metadata{Type: "ley", Jurisdiction: "nacional"})
}

func chunkByID(chunks []chunk.Chunk) map[string]*chunk.Chunk {
	m := make(map[string]*chunk.Chunk, len(chunks))
	for i := range chunks {
		m[chunks[i].ID] = &chunks[i]
	}
	return m
}

func hasRelation(c *chunk.Chunk, typ chunk.RelationType, id string) bool {
	for _, r := range c.Relationships {
		if r.Type == typ && r.ChunkID == id {
			return true
		}
	}
	return false
}
