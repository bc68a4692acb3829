// Package ingest turns raw legal documents into stored, embedded chunks.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/domain/chunk"
	"github.com/kailas-cloud/lexdex/internal/domain/legal"
	"github.com/kailas-cloud/lexdex/internal/metrics"
)

var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://lexdex.kailas.cloud/document"))

// Request is one document to ingest. An empty ID is derived from the content.
type Request struct {
	ID       string
	Content  string
	Metadata legal.Metadata
}

// Result summarizes one ingestion.
type Result struct {
	DocumentID  string
	Created     bool
	Chunks      int
	Embedded    bool
	TotalTokens int
}

// Service runs chunk, embed, persist, invalidate.
type Service struct {
	chunker  Chunker
	embedder domain.Embedder
	repo     Repository
	stats    StatsInvalidator
	logger   *zap.Logger
}

// New creates an ingestion service. embedder may be nil: chunks are then stored without vectors.
func New(c Chunker, embedder domain.Embedder, repo Repository, stats StatsInvalidator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{chunker: c, embedder: embedder, repo: repo, stats: stats, logger: logger}
}

// Ingest chunks, embeds and stores one document.
// Embedding failures are logged and leave the chunks without vectors; search then scores them lexically.
func (s *Service) Ingest(ctx context.Context, collection string, req Request) (Result, error) {
	if err := domain.ValidateCollectionName(collection); err != nil {
		metrics.IngestDocumentsTotal.WithLabelValues("invalid").Inc()
		return Result{}, err
	}
	if strings.TrimSpace(req.Content) == "" {
		metrics.IngestDocumentsTotal.WithLabelValues("invalid").Inc()
		return Result{}, fmt.Errorf("content is required: %w", domain.ErrInvalidRequest)
	}
	if len(req.Content) > domain.MaxContentSize {
		metrics.IngestDocumentsTotal.WithLabelValues("invalid").Inc()
		return Result{}, fmt.Errorf("content too large (max %d bytes): %w", domain.MaxContentSize, domain.ErrInvalidRequest)
	}

	docID := req.ID
	if docID == "" {
		docID = uuid.NewSHA1(documentNamespace, []byte(req.Content)).String()
	} else if err := domain.ValidateDocumentID(docID); err != nil {
		metrics.IngestDocumentsTotal.WithLabelValues("invalid").Inc()
		return Result{}, err
	}

	chunks := s.chunker.ChunkDocument(docID, req.Content, req.Metadata)
	res := Result{DocumentID: docID, Chunks: len(chunks)}
	res.Embedded, res.TotalTokens = s.embed(ctx, collection, docID, chunks)

	created, err := s.repo.SaveDocument(ctx, collection, docID, req.Metadata, chunks)
	if err != nil {
		metrics.IngestDocumentsTotal.WithLabelValues("error").Inc()
		return Result{}, fmt.Errorf("save document: %w", err)
	}
	res.Created = created

	if s.stats != nil {
		s.stats.Invalidate(collection)
	}

	status := "replaced"
	if created {
		status = "created"
	}
	metrics.IngestDocumentsTotal.WithLabelValues(status).Inc()

	s.logger.Info("Document ingested",
		zap.String("collection", collection),
		zap.String("document_id", docID),
		zap.Int("chunks", len(chunks)),
		zap.Bool("embedded", res.Embedded),
		zap.Bool("created", created),
	)
	return res, nil
}

// Delete removes a document and invalidates the collection stats.
func (s *Service) Delete(ctx context.Context, collection, docID string) error {
	if err := domain.ValidateCollectionName(collection); err != nil {
		return err
	}
	if err := s.repo.DeleteDocument(ctx, collection, docID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if s.stats != nil {
		s.stats.Invalidate(collection)
	}
	return nil
}

// embed attaches vectors to chunks in one batch. It reports whether vectors were attached.
func (s *Service) embed(ctx context.Context, collection, docID string, chunks []chunk.Chunk) (bool, int) {
	if s.embedder == nil || len(chunks) == 0 {
		return false, 0
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	res, err := domain.EmbedMany(ctx, s.embedder, texts)
	if err != nil {
		s.logger.Warn("Chunk embedding failed, storing without vectors",
			zap.String("collection", collection),
			zap.String("document_id", docID),
			zap.Int("chunks", len(chunks)),
			zap.Error(err),
		)
		return false, 0
	}

	for i := range chunks {
		chunks[i].Embedding = res.Embeddings[i]
	}
	return true, res.TotalTokens
}
