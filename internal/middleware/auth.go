package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/go-chi/chi/v5"

	"fitness-directory/backend/internal/domain/owner"
)

type ctxKey string

const authUserKey ctxKey = "authUser"

// RoleClaim is the custom claim naming the owner kind of an account.
const RoleClaim = "role"

type AuthUser struct {
	UID    string
	Email  string
	Claims map[string]any
}

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

func WithAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
				http.Error(w, "missing Authorization: Bearer <token>", http.StatusUnauthorized)
				return
			}
			idToken := strings.TrimSpace(h[len("Bearer "):])

			tok, err := verifier.VerifyIDToken(r.Context(), idToken)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			au := &AuthUser{
				UID:    tok.UID,
				Claims: tok.Claims,
			}
			if v, ok := tok.Claims["email"].(string); ok {
				au.Email = v
			}

			ctx := WithAuthUser(r.Context(), au)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithAuthUser(ctx context.Context, au *AuthUser) context.Context {
	return context.WithValue(ctx, authUserKey, au)
}

func GetAuthUser(ctx context.Context) (*AuthUser, bool) {
	v := ctx.Value(authUserKey)
	if v == nil {
		return nil, false
	}
	au, ok := v.(*AuthUser)
	return au, ok
}

// RequireOwner lets a request through only when the caller is the owner named
// by the kindParam and idParam route parameters, or an admin. A role claim
// naming a different owner kind is rejected.
func RequireOwner(kindParam, idParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			au, ok := GetAuthUser(r.Context())
			if !ok || au.UID == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if IsAdmin(au.Claims) {
				next.ServeHTTP(w, r)
				return
			}

			kind, err := owner.ParseKind(chi.URLParam(r, kindParam))
			if err != nil {
				http.Error(w, "unknown owner kind", http.StatusNotFound)
				return
			}
			if chi.URLParam(r, idParam) != au.UID {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			if claimed, ok := OwnerKind(au.Claims); ok && claimed != kind {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsAdmin checks the admin flag or an "admin" role claim.
func IsAdmin(claims map[string]any) bool {
	if claims == nil {
		return false
	}
	if admin, ok := claims["admin"].(bool); ok && admin {
		return true
	}
	if role, ok := claims[RoleClaim].(string); ok && role == "admin" {
		return true
	}
	if roles, ok := claims["roles"].([]interface{}); ok {
		for _, r := range roles {
			if str, ok := r.(string); ok && str == "admin" {
				return true
			}
		}
	}
	return false
}

// OwnerKind reads the owner kind from the role claim, if it names one.
func OwnerKind(claims map[string]any) (owner.Kind, bool) {
	role, ok := claims[RoleClaim].(string)
	if !ok || role == "" {
		return "", false
	}
	k, err := owner.ParseKind(role)
	if err != nil {
		return "", false
	}
	return k, true
}
