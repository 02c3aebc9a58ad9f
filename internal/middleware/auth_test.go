package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type fakeVerifier map[string]*auth.Token

func (f fakeVerifier) VerifyIDToken(_ context.Context, tok string) (*auth.Token, error) {
	if t, ok := f[tok]; ok {
		return t, nil
	}
	return nil, errors.New("bad token")
}

func newRouter() http.Handler {
	v := fakeVerifier{
		"gym-token":     {UID: "gym-1", Claims: map[string]any{"role": "gym", "email": "a@b.c"}},
		"student-token": {UID: "gym-1", Claims: map[string]any{"role": "student"}},
		"admin-token":   {UID: "root", Claims: map[string]any{"admin": true}},
		"plain-token":   {UID: "pt-1", Claims: map[string]any{}},
	}
	r := chi.NewRouter()
	r.Use(WithAuth(v))
	r.With(RequireOwner("kind", "ownerId")).Get("/v1/{kind}/{ownerId}", func(w http.ResponseWriter, r *http.Request) {
		au, _ := GetAuthUser(r.Context())
		_, _ = w.Write([]byte(au.UID))
	})
	return r
}

func TestRequireOwner(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		path   string
		status int
	}{
		{"missing token", "", "/v1/gyms/gym-1", http.StatusUnauthorized},
		{"bad token", "nope", "/v1/gyms/gym-1", http.StatusUnauthorized},
		{"owner", "gym-token", "/v1/gyms/gym-1", http.StatusOK},
		{"other owner", "gym-token", "/v1/gyms/gym-2", http.StatusForbidden},
		{"role names another kind", "student-token", "/v1/gyms/gym-1", http.StatusForbidden},
		{"no role claim", "plain-token", "/v1/personal-trainers/pt-1", http.StatusOK},
		{"admin", "admin-token", "/v1/students/anyone", http.StatusOK},
		{"unknown kind", "gym-token", "/v1/dojos/gym-1", http.StatusNotFound},
	}
	h := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestOwnerKind(t *testing.T) {
	k, ok := OwnerKind(map[string]any{"role": "personal_trainer"})
	assert.True(t, ok)
	assert.Equal(t, "personal_trainer", k.String())

	_, ok = OwnerKind(map[string]any{"role": "admin"})
	assert.False(t, ok)
	assert.True(t, IsAdmin(map[string]any{"roles": []interface{}{"admin"}}))
	assert.False(t, IsAdmin(nil))
}
