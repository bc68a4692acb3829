package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/domain/chunk"
	chunkrepo "github.com/kailas-cloud/lexdex/internal/repository/chunk"
	healthuc "github.com/kailas-cloud/lexdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/lexdex/internal/usecase/ingest"
	"github.com/kailas-cloud/lexdex/internal/usecase/scoring"
	searchuc "github.com/kailas-cloud/lexdex/internal/usecase/search"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func TestIngestDocument(t *testing.T) {
	f := newFixture(t)
	f.ingest.result = ingestuc.Result{DocumentID: "ley-1", Created: true, Chunks: 3, Embedded: true}
	h := f.server.Router(nil)

	rr := do(t, h, "POST", "/collections/leyes/documents",
		`{"id":"ley-1","content":"ARTÍCULO 1. Texto.","metadata":{"type":"ley","jurisdiction":"nacional"}}`)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/collections/leyes/documents/ley-1" {
		t.Errorf("unexpected Location %q", loc)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	var resp IngestDocumentResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Chunks != 3 || !resp.Embedded || resp.Collection != "leyes" {
		t.Errorf("unexpected response %+v", resp)
	}
	if f.ingest.collection != "leyes" || f.ingest.req.Metadata.Jurisdiction != "nacional" {
		t.Errorf("request not forwarded: %+v", f.ingest.req)
	}
}

func TestIngestDocument_ReplaceReturns200(t *testing.T) {
	f := newFixture(t)
	f.ingest.result = ingestuc.Result{DocumentID: "ley-1"}

	rr := do(t, f.server.Router(nil), "POST", "/collections/leyes/documents", `{"content":"x"}`)
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}

func TestIngestDocument_BadJSON(t *testing.T) {
	f := newFixture(t)
	rr := do(t, f.server.Router(nil), "POST", "/collections/leyes/documents", `{"content":`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != CodeBadRequest {
		t.Errorf("unexpected code %q", e.Code)
	}
}

func TestDomainErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   ErrorCode
	}{
		{"invalid request", fmt.Errorf("content is required: %w", domain.ErrInvalidRequest),
			http.StatusBadRequest, CodeValidationFailed},
		{"collection not found", fmt.Errorf("x: %w", domain.ErrCollectionNotFound),
			http.StatusNotFound, CodeCollectionNotFound},
		{"not found", domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"embedding timeout", fmt.Errorf("embed: %w", domain.ErrEmbeddingTimeout),
			http.StatusGatewayTimeout, CodeEmbeddingTimeout},
		{"provider error", domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider},
		{"unknown", errors.New("redis: connection refused"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.search.err = tt.err

			rr := do(t, f.server.Router(nil), "POST", "/collections/leyes/search", `{"query":"contrato"}`)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}
			e := decodeError(t, rr)
			if e.Code != tt.code {
				t.Errorf("expected code %q, got %q", tt.code, e.Code)
			}
			if tt.code == CodeInternalError && strings.Contains(e.Message, "redis") {
				t.Errorf("internal details leaked: %q", e.Message)
			}
		})
	}
}

func TestSearch_ForwardsFlagsAndReturnsItems(t *testing.T) {
	f := newFixture(t)
	f.search.resp = searchuc.Response{
		Candidates: 7,
		Results: []scoring.ScoredDocument{{
			Candidate:      scoring.Candidate{ID: "c1", Content: "texto", Embedding: []float32{1, 2}},
			RelevanceScore: 0.8,
			Explanation:    "Strong semantic similarity",
		}},
	}

	rr := do(t, f.server.Router(nil), "POST", "/collections/leyes/search",
		`{"query":"arrendamiento","limit":5,"prefer_recent":true,"enable_mmr":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if f.search.req.Limit != 5 || !f.search.req.Context.PreferRecent || !f.search.req.Context.EnableMMR {
		t.Errorf("flags not forwarded: %+v", f.search.req)
	}

	body := rr.Body.String()
	if strings.Contains(body, "embedding") {
		t.Error("embeddings must not be serialized")
	}
	var resp SearchResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || resp.Candidates != 7 || resp.Items[0].Breakdown != (scoring.ScoreBreakdown{}) {
		t.Errorf("unexpected response %+v", resp)
	}
	if !strings.Contains(body, `"score_breakdown"`) || !strings.Contains(body, `"relevance_score"`) {
		t.Errorf("missing fields in %s", body)
	}
}

func TestSearch_EmptyResultsIsArray(t *testing.T) {
	f := newFixture(t)
	rr := do(t, f.server.Router(nil), "POST", "/collections/leyes/search", `{"query":"x"}`)

	if !strings.Contains(rr.Body.String(), `"items":[]`) {
		t.Errorf("expected empty array, got %s", rr.Body.String())
	}
}

func TestPreviewChunks(t *testing.T) {
	f := newFixture(t)
	h := f.server.Router(nil)

	rr := do(t, h, "POST", "/chunk", `{"content":"ARTÍCULO 1. Texto."}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp ChunkPreviewResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Structure.Title != "LEY" || len(resp.Chunks) != 1 || resp.Chunks[0].DocumentID != "preview" {
		t.Errorf("unexpected preview %+v", resp)
	}

	rr = do(t, h, "POST", "/chunk", `{"content":"   "}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for blank content, got %d", rr.Code)
	}
}

func TestGetDocument_StripsEmbeddings(t *testing.T) {
	f := newFixture(t)
	f.docs.doc = chunkrepo.Document{
		ID:         "ley-1",
		Collection: "leyes",
		Chunks:     []chunk.Chunk{{ID: "c1", Embedding: []float32{1, 2, 3}}},
	}

	rr := do(t, f.server.Router(nil), "GET", "/collections/leyes/documents/ley-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "embedding") {
		t.Errorf("embedding leaked: %s", rr.Body.String())
	}
	if f.docs.doc.Chunks[0].Embedding == nil {
		t.Error("stored document must not be mutated")
	}
}

func TestDeleteDocument(t *testing.T) {
	f := newFixture(t)
	h := f.server.Router(nil)

	if rr := do(t, h, "DELETE", "/collections/leyes/documents/ley-1", ""); rr.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rr.Code)
	}
	f.ingest.deleteErr = fmt.Errorf("document ley-1: %w", domain.ErrNotFound)
	if rr := do(t, h, "DELETE", "/collections/leyes/documents/ley-1", ""); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestListEndpoints(t *testing.T) {
	f := newFixture(t)
	f.docs.names = []string{"decretos", "leyes"}
	f.docs.ids = []string{"a", "b"}
	h := f.server.Router(nil)

	rr := do(t, h, "GET", "/collections", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"total":2`) {
		t.Errorf("collections: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, h, "GET", "/collections/leyes/documents", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"items":["a","b"]`) {
		t.Errorf("documents: %d %s", rr.Code, rr.Body.String())
	}

	f.docs.ids = nil
	if rr := do(t, h, "GET", "/collections/vacia/documents", ""); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for empty collection, got %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		status healthuc.Status
		want   int
	}{
		{healthuc.Healthy, http.StatusOK},
		{healthuc.Degraded, http.StatusOK},
		{healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			f := newFixture(t)
			f.health.report = healthuc.Report{
				Status: tt.status,
				Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
			}
			rr := do(t, f.server.Router([]string{"secret"}), "GET", "/health", "")
			if rr.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestRouter_AuthAndMetrics(t *testing.T) {
	f := newFixture(t)
	h := f.server.Router([]string{"secret"})

	if rr := do(t, h, "POST", "/collections/leyes/search", `{"query":"x"}`); rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rr.Code)
	}

	do(t, h, "GET", "/health", "")
	rr := do(t, h, "GET", "/metrics", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "lexdex_http_requests_total") {
		t.Errorf("expected metrics exposition, got %d", rr.Code)
	}
}

func TestRouter_NotFoundIsJSON(t *testing.T) {
	f := newFixture(t)
	rr := do(t, f.server.Router(nil), "GET", "/nope", "")

	if rr.Code != http.StatusNotFound || rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected JSON 404, got %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(nopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := do(t, h, "GET", "/", "")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != CodeInternalError {
		t.Errorf("unexpected code %q", e.Code)
	}
}

func TestDecode_BodyTooLarge(t *testing.T) {
	f := newFixture(t)
	big := `{"content":"` + strings.Repeat("a", maxBodySize) + `"}`

	rr := do(t, f.server.Router(nil), "POST", "/collections/leyes/documents", big)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rr.Code)
	}
}
