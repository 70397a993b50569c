// ABOUTME: RequireAuthenticated and RequireAdmin middleware for JWT auth.
// ABOUTME: Accepts a Bearer token or the access_token cookie; injects identity into context.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/docuvault/docuvault/internal/auth"
)

// requestToken extracts the JWT from the Authorization header (Bearer) or,
// failing that, the access_token cookie. Returns "" when neither is present.
func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuthenticated returns a middleware that requires a valid JWT via
// Bearer header or access_token cookie. On success it injects ctxUserID and
// ctxIsAdmin into the request context.
func (srv *Server) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := requestToken(r)
			if token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			claims, err := auth.ParseToken(token, []byte(srv.cfg.JWTSecret))
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
			ctx = context.WithValue(ctx, ctxIsAdmin, claims.IsAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns a middleware that rejects non-admin callers. Must be
// mounted after RequireAuthenticated.
func (srv *Server) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isAdmin, ok := r.Context().Value(ctxIsAdmin).(bool)
			if !ok || !isAdmin {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
