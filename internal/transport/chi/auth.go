package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/lexdex/internal/logger"
)

const bearerPrefix = "Bearer "

// exemptPaths stay reachable for probes and scrapers without a key.
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// BearerAuthMiddleware rejects requests without one of apiKeys as a Bearer token.
// Blank keys are ignored; with no keys left authentication is off.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	var keys [][]byte
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if msg := checkBearer(keys, r.Header.Get("Authorization")); msg != "" {
				logpkg.FromContext(r.Context()).Debug("Request rejected by auth",
					zap.String("path", r.URL.Path),
					zap.String("reason", msg),
				)
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// checkBearer returns the rejection message, or "" when the header carries a known key.
func checkBearer(keys [][]byte, header string) string {
	switch {
	case header == "":
		return "missing authorization header"
	case !strings.HasPrefix(header, bearerPrefix):
		return "authorization header must use Bearer scheme"
	}

	// Compare against every key so timing does not reveal which one matched.
	token := []byte(strings.TrimPrefix(header, bearerPrefix))
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare(k, token)
	}
	if match != 1 {
		return "invalid api key"
	}
	return ""
}
