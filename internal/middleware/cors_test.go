package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func preflight(t *testing.T, h http.Handler, origin string) http.Header {
	t.Helper()
	req := httptest.NewRequest(http.MethodOptions, "/v1/gyms/gym-1/events", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Header()
}

func corsRouter(origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(CORS(origins, zap.NewNop()))
	r.Patch("/v1/gyms/gym-1/events", func(w http.ResponseWriter, _ *http.Request) {})
	return r
}

func TestCORS_ExplicitOrigins(t *testing.T) {
	h := corsRouter([]string{" https://app.example/ ", "https://app.example"})

	got := preflight(t, h, "https://app.example")
	assert.Equal(t, "https://app.example", got.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", got.Get("Access-Control-Allow-Credentials"))

	got = preflight(t, h, "https://evil.example")
	assert.Empty(t, got.Get("Access-Control-Allow-Origin"))
}

func TestCORS_AnyOriginWithoutCredentials(t *testing.T) {
	for _, origins := range [][]string{nil, {"*"}, {" ", ""}} {
		got := preflight(t, corsRouter(origins), "http://localhost:5173")
		assert.Contains(t, []string{"*", "http://localhost:5173"}, got.Get("Access-Control-Allow-Origin"))
		assert.Empty(t, got.Get("Access-Control-Allow-Credentials"))
	}
}

func TestCORSOrigins(t *testing.T) {
	assert.Equal(t,
		[]string{"https://a.example", "https://b.example"},
		corsOrigins([]string{"https://a.example/", "", "*", " https://b.example", "https://a.example"}),
	)
	assert.Nil(t, corsOrigins(nil))
}
