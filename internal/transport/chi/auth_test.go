package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		path   string
		header string
		want   int
	}{
		{"no keys passes through", nil, "/collections", "", http.StatusOK},
		{"blank keys pass through", []string{"", ""}, "/collections", "", http.StatusOK},
		{"missing header", []string{"secret"}, "/collections", "", http.StatusUnauthorized},
		{"wrong scheme", []string{"secret"}, "/collections", "Basic secret", http.StatusUnauthorized},
		{"wrong key", []string{"secret"}, "/collections", "Bearer nope", http.StatusUnauthorized},
		{"valid key", []string{"secret"}, "/collections", "Bearer secret", http.StatusOK},
		{"second key valid", []string{"a", "b"}, "/collections", "Bearer b", http.StatusOK},
		{"health exempt", []string{"secret"}, "/health", "", http.StatusOK},
		{"metrics exempt", []string{"secret"}, "/metrics", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := BearerAuthMiddleware(tt.keys)(okHandler())

			req := httptest.NewRequest("GET", tt.path, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("got %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized {
				var errResp ErrorResponse
				if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
					t.Fatalf("decode error response: %v", err)
				}
				if errResp.Code != CodeUnauthorized {
					t.Errorf("expected code %q, got %q", CodeUnauthorized, errResp.Code)
				}
			}
		})
	}
}

func TestCheckBearer(t *testing.T) {
	keys := [][]byte{[]byte("alpha"), []byte("beta")}

	tests := []struct {
		header string
		want   string
	}{
		{"", "missing authorization header"},
		{"Token alpha", "authorization header must use Bearer scheme"},
		{"Bearer ", "invalid api key"},
		{"Bearer alph", "invalid api key"},
		{"Bearer alpha", ""},
		{"Bearer beta", ""},
	}
	for _, tt := range tests {
		if got := checkBearer(keys, tt.header); got != tt.want {
			t.Errorf("checkBearer(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
