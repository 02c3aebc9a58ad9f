package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// CORS allows browser clients from the configured origins. Credentials are
// only allowed for an explicit origin list; no origins (local development)
// means any origin without credentials.
func CORS(origins []string, log *zap.Logger) func(http.Handler) http.Handler {
	allowed := corsOrigins(origins)
	wildcard := len(allowed) == 0
	if wildcard {
		allowed = []string{"*"}
	}
	log.Info("cors configured", zap.Strings("origins", allowed), zap.Bool("credentials", !wildcard))

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !wildcard,
		MaxAge:           600,
	})
}

// corsOrigins drops blanks, trailing slashes and repeats.
func corsOrigins(in []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, o := range in {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || o == "*" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}
