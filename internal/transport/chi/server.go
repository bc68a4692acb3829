// Package chi is the HTTP surface of lexdex on the chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/domain/chunk"
	"github.com/kailas-cloud/lexdex/internal/domain/legal"
	logpkg "github.com/kailas-cloud/lexdex/internal/logger"
	"github.com/kailas-cloud/lexdex/internal/metrics"
	chunkrepo "github.com/kailas-cloud/lexdex/internal/repository/chunk"
	"github.com/kailas-cloud/lexdex/internal/usecase/chunker"
	healthuc "github.com/kailas-cloud/lexdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/lexdex/internal/usecase/ingest"
	"github.com/kailas-cloud/lexdex/internal/usecase/scoring"
	searchuc "github.com/kailas-cloud/lexdex/internal/usecase/search"
)

// maxBodySize leaves room for JSON escaping and metadata around the raw content.
const maxBodySize = 2*domain.MaxContentSize + 64<<10

// Ingester stores documents.
type Ingester interface {
	Ingest(ctx context.Context, collection string, req ingestuc.Request) (ingestuc.Result, error)
	Delete(ctx context.Context, collection, docID string) error
}

// Searcher answers queries.
type Searcher interface {
	Search(ctx context.Context, collection string, req searchuc.Request) (searchuc.Response, error)
}

// Previewer parses and chunks without storing.
type Previewer interface {
	ParseStructure(content string) chunker.DocumentStructure
	ChunkDocument(documentID, content string, meta legal.Metadata) []chunk.Chunk
}

// DocumentReader reads stored documents.
type DocumentReader interface {
	GetDocument(ctx context.Context, collection, docID string) (chunkrepo.Document, error)
	ListDocumentIDs(ctx context.Context, collection string) ([]string, error)
	ListCollections(ctx context.Context) ([]string, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	ingest        Ingester
	search        Searcher
	preview       Previewer
	docs          DocumentReader
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest Ingester,
	search Searcher,
	preview Previewer,
	docs DocumentReader,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		ingest:        ingest,
		search:        search,
		preview:       preview,
		docs:          docs,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Router builds the full middleware stack and routes.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := gochi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/chunk", s.PreviewChunks)

	r.Route("/collections", func(r gochi.Router) {
		r.Get("/", s.ListCollections)
		r.Route("/{collection}", func(r gochi.Router) {
			r.Post("/search", s.Search)
			r.Get("/documents", s.ListDocuments)
			r.Post("/documents", s.IngestDocument)
			r.Get("/documents/{id}", s.GetDocument)
			r.Delete("/documents/{id}", s.DeleteDocument)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

// IngestDocument handles POST /collections/{collection}/documents.
func (s *Server) IngestDocument(w http.ResponseWriter, r *http.Request) {
	collection := gochi.URLParam(r, "collection")

	var req IngestDocumentRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx := logpkg.With(r.Context(), zap.String("collection", collection))
	res, err := s.ingest.Ingest(ctx, collection, ingestuc.Request{
		ID:       req.ID,
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/collections/%s/documents/%s", collection, res.DocumentID))
	}
	writeJSON(w, status, IngestDocumentResponse{
		ID:         res.DocumentID,
		Collection: collection,
		Created:    res.Created,
		Chunks:     res.Chunks,
		Embedded:   res.Embedded,
	})
}

// GetDocument handles GET /collections/{collection}/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	collection := gochi.URLParam(r, "collection")
	id := gochi.URLParam(r, "id")

	doc, err := s.docs.GetDocument(r.Context(), collection, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	chunks := make([]chunk.Chunk, len(doc.Chunks))
	for i, c := range doc.Chunks {
		c.Embedding = nil
		chunks[i] = c
	}
	writeJSON(w, http.StatusOK, DocumentResponse{
		ID:         doc.ID,
		Collection: doc.Collection,
		Metadata:   doc.Metadata,
		Chunks:     chunks,
		IngestedAt: doc.IngestedAt,
	})
}

// DeleteDocument handles DELETE /collections/{collection}/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	collection := gochi.URLParam(r, "collection")
	id := gochi.URLParam(r, "id")

	if err := s.ingest.Delete(r.Context(), collection, id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDocuments handles GET /collections/{collection}/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	collection := gochi.URLParam(r, "collection")
	if err := domain.ValidateCollectionName(collection); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ids, err := s.docs.ListDocumentIDs(r.Context(), collection)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if len(ids) == 0 {
		s.handleDomainError(w, r, fmt.Errorf("%s: %w", collection, domain.ErrCollectionNotFound))
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: ids, Total: len(ids)})
}

// ListCollections handles GET /collections.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	names, err := s.docs.ListCollections(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: names, Total: len(names)})
}

// Search handles POST /collections/{collection}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	collection := gochi.URLParam(r, "collection")

	var req SearchRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx := logpkg.With(r.Context(), zap.String("collection", collection))
	resp, err := s.search.Search(ctx, collection, searchuc.Request{
		Query:    req.Query,
		Limit:    req.Limit,
		MinScore: req.MinScore,
		Context:  req.SearchContext,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := resp.Results
	if items == nil {
		items = []scoring.ScoredDocument{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Items:      items,
		Total:      len(items),
		Candidates: resp.Candidates,
		TookMS:     resp.Took.Milliseconds(),
	})
}

// PreviewChunks handles POST /chunk.
func (s *Server) PreviewChunks(w http.ResponseWriter, r *http.Request) {
	var req ChunkPreviewRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "content is required")
		return
	}
	docID := req.DocumentID
	if docID == "" {
		docID = "preview"
	}

	chunks := s.preview.ChunkDocument(docID, req.Content, req.Metadata)
	if chunks == nil {
		chunks = []chunk.Chunk{}
	}
	writeJSON(w, http.StatusOK, ChunkPreviewResponse{
		Structure: s.preview.ParseStructure(req.Content),
		Chunks:    chunks,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// decode reads a JSON body bounded by maxBodySize. On failure it writes the error response.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeRequestBodyTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
