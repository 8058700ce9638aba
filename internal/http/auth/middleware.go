package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/mecdoors/siteledger/internal/auth"
)

type contextKey struct{}

var userKey contextKey

// CurrentUser returns the authenticated user placed on the context by
// Middleware, or nil outside an authenticated request.
func CurrentUser(ctx context.Context) *auth.User {
	u, _ := ctx.Value(userKey).(*auth.User)
	return u
}

// Middleware verifies the bearer token and its session row, and attaches the
// user to the request context.
func Middleware(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "access token required", http.StatusUnauthorized)
				return
			}

			u, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimPrefix(header, prefix)
}
