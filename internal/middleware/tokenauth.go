// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"net/http"

	"github.com/wishkeep/wishkeep/internal/auth"
)

// TokenAuth enforces bearer-token authentication.
//
// It validates the Authorization header of the incoming request against the
// given secret. The /api/login endpoint is excluded so users can sign in
// and obtain a token.
//
// On success the embedded principal (username and role) is stored in the
// request context for downstream handlers.
func TokenAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/login" {
				// Allow login without a token
				next.ServeHTTP(w, r)
				return
			}
			p, err := auth.ParseBearer(r.Header.Get("Authorization"), secret)
			if err != nil {
				http.Error(w, "invalid or missing token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAdmin rejects requests whose principal does not hold the admin
// role. Must run after TokenAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.FromContext(r.Context())
		if !ok || !p.IsAdmin() {
			http.Error(w, "admin only", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
