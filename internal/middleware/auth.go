package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// APIKeyHeader carries the key checked by APIKeyAuth
const APIKeyHeader = "api_key"

// APIKeyAuth rejects requests whose api_key header is missing (401) or not
// one of keys (403). With no keys configured it lets every request through.
func APIKeyAuth(keys []string, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" {
				logger.Warn("api key missing", "method", r.Method, "path", r.URL.Path)
				http.Error(w, "Unauthorized: API key required", http.StatusUnauthorized)
				return
			}

			if !matchesAny(apiKey, keys) {
				logger.Warn("api key rejected", "method", r.Method, "path", r.URL.Path)
				http.Error(w, "Forbidden: Invalid API key", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func matchesAny(candidate string, keys []string) bool {
	valid := false
	for _, key := range keys {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(key)) == 1 {
			valid = true
		}
	}
	return valid
}
