// Package chunker parses legal documents into a section tree and cuts each section
// into overlapping, size-bounded chunks linked by structural relationships.
package chunker

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/domain/chunk"
	"github.com/kailas-cloud/lexdex/internal/domain/legal"
	"github.com/kailas-cloud/lexdex/internal/metrics"
)

// chunkNamespace scopes the name-based chunk UUIDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://lexdex.kailas.cloud/chunk"))

// Config controls chunk sizes. Sizes count characters (runes).
type Config struct {
	MaxChunkSize        int
	MinChunkSize        int
	OverlapSize         int
	CalculateImportance bool
}

// DefaultConfig returns the default chunk sizes.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize:        1000,
		MinChunkSize:        100,
		OverlapSize:         200,
		CalculateImportance: true,
	}
}

// Validate rejects configurations that would make splitting loop or degenerate.
func (c Config) Validate() error {
	switch {
	case c.MaxChunkSize <= 0:
		return fmt.Errorf("max chunk size must be positive, got %d: %w", c.MaxChunkSize, domain.ErrInvalidConfig)
	case c.MinChunkSize < 0:
		return fmt.Errorf("min chunk size must not be negative, got %d: %w", c.MinChunkSize, domain.ErrInvalidConfig)
	case c.MinChunkSize > c.MaxChunkSize:
		return fmt.Errorf("min chunk size %d exceeds max chunk size %d: %w",
			c.MinChunkSize, c.MaxChunkSize, domain.ErrInvalidConfig)
	case c.OverlapSize < 0:
		return fmt.Errorf("overlap size must not be negative, got %d: %w", c.OverlapSize, domain.ErrInvalidConfig)
	case c.OverlapSize >= c.MaxChunkSize:
		return fmt.Errorf("overlap size %d must be smaller than max chunk size %d: %w",
			c.OverlapSize, c.MaxChunkSize, domain.ErrInvalidConfig)
	}
	return nil
}

// Chunker is safe for concurrent use; every call owns its input and output.
type Chunker struct {
	cfg    Config
	rules  []Rule
	logger *zap.Logger
}

// New creates a chunker with the default rule table.
func New(cfg Config, logger *zap.Logger) (*Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chunker{cfg: cfg, rules: DefaultRules(), logger: logger}, nil
}

// WithRules replaces the boundary rule table. An empty table keeps the current one.
func (c *Chunker) WithRules(rules []Rule) *Chunker {
	if len(rules) > 0 {
		c.rules = rules
	}
	return c
}

// Config returns the active configuration.
func (c *Chunker) Config() Config { return c.cfg }

// ParseStructure returns the section tree of content.
func (c *Chunker) ParseStructure(content string) DocumentStructure {
	return parseStructure(content, c.rules)
}

// ChunkDocument parses content and returns its chunks in document order.
// Output is deterministic for a given input and configuration.
func (c *Chunker) ChunkDocument(documentID, content string, meta legal.Metadata) []chunk.Chunk {
	start := time.Now()
	structure := c.ParseStructure(content)

	var chunks []chunk.Chunk
	var owners []int

	for si := range structure.Sections {
		sec := &structure.Sections[si]
		drafts := c.splitText(sec.Text())
		first := len(chunks)

		for i, d := range drafts {
			chunks = append(chunks, chunk.Chunk{
				ID:          chunkID(documentID, len(chunks)),
				DocumentID:  documentID,
				Content:     d.content,
				Section:     sec.Title,
				SectionType: string(sec.Type),
				Level:       sec.Level,
				StartChar:   d.start,
				EndChar:     d.end,
				Metadata: chunk.Metadata{
					Metadata:   meta.Clone(),
					SectionID:  sec.ID,
					ChunkIndex: i,
					HasOverlap: d.overlap,
				},
				Importance: neutralImportance,
			})
			owners = append(owners, si)
		}

		for k := first; k < len(chunks); k++ {
			chunks[k].Metadata.TotalChunks = len(drafts)
		}
	}

	link(chunks, owners, &structure)
	if c.cfg.CalculateImportance {
		scoreImportance(chunks)
	}

	metrics.ChunkerDocumentsTotal.Inc()
	metrics.ChunkerChunksPerDocument.Observe(float64(len(chunks)))
	metrics.ChunkerSectionsPerDocument.Observe(float64(len(structure.Sections)))

	c.logger.Debug("Document chunked",
		zap.String("document_id", documentID),
		zap.Int("sections", len(structure.Sections)),
		zap.Int("chunks", len(chunks)),
		zap.Duration("duration", time.Since(start)),
	)

	return chunks
}

func chunkID(documentID string, index int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(documentID+"/"+strconv.Itoa(index))).String()
}
