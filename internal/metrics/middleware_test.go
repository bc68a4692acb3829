package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/collections/{collection}/documents", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	r.Post("/collections/{collection}/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})
	r.Post("/chunk", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	return r
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := newRouter()

	tests := []struct {
		method string
		path   string
		label  string
		status string
	}{
		{"POST", "/collections/leyes/documents", "/collections/{collection}/documents", "201"},
		{"POST", "/collections/fallos/search", "/collections/{collection}/search", "200"},
		{"POST", "/chunk", "/chunk", "400"},
		{"GET", "/health", "/health", "503"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.label, tc.status))

			req := httptest.NewRequest(tc.method, tc.path, http.NoBody)
			r.ServeHTTP(httptest.NewRecorder(), req)

			after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.label, tc.status))
			if after != before+1 {
				t.Errorf("expected counter for %s %s to grow by 1, got %f -> %f", tc.method, tc.label, before, after)
			}
		})
	}

	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := newRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nope", http.NoBody))

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404")); got != before+1 {
		t.Errorf("expected unmatched route under \"unknown\", got %f", got-before)
	}
}

func TestStatusWriter_FirstHeaderWins(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	_, _ = w.Write([]byte("body"))
	w.WriteHeader(http.StatusTeapot)

	if w.status != http.StatusOK {
		t.Errorf("implicit 200 must stick after Write, got %d", w.status)
	}
}

func TestRouteLabel_NoRouteContext(t *testing.T) {
	if got := routeLabel(httptest.NewRequest("GET", "/x", http.NoBody)); got != "unknown" {
		t.Errorf("expected unknown outside chi, got %q", got)
	}
}

func TestRegisterMetrics_Exposed(t *testing.T) {
	RegisterHTTPMetrics()
	RegisterRetrievalMetrics()
	RegisterRetrievalMetrics() // idempotent
	RegisterHTTPMetrics()

	ChunkerDocumentsTotal.Inc()
	ScoringRequestsTotal.WithLabelValues("mmr").Inc()

	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", http.NoBody))

	body, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	for _, name := range []string{
		"lexdex_chunker_documents_total",
		`lexdex_scoring_requests_total{rerank="mmr"}`,
		"lexdex_http_requests_total",
		"lexdex_http_requests_in_flight",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected %s in exposition", name)
		}
	}
}
