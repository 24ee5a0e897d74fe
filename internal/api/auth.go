package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/skillmap/internal/auth"
)

// BearerAuth verifies the request's bearer token and stores its claims in
// the request context.
func BearerAuth(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				httpError(w, http.StatusUnauthorized, errAuthentication, "invalid or missing bearer token")
				return
			}
			claims, err := issuer.Verify(strings.TrimSpace(header[len(prefix):]))
			if err != nil {
				httpError(w, http.StatusUnauthorized, errAuthentication, "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireSelf allows the request only when the {userID} path parameter is
// the caller's own ID, or the caller is an admin.
func RequireSelf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.FromContext(r.Context())
		if !ok {
			httpError(w, http.StatusUnauthorized, errAuthentication, "authentication required")
			return
		}
		if !claims.IsAdmin() && chi.URLParam(r, "userID") != claims.UserID() {
			httpError(w, http.StatusForbidden, errPermission, "access to another user's data is not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.FromContext(r.Context())
		if !ok {
			httpError(w, http.StatusUnauthorized, errAuthentication, "authentication required")
			return
		}
		if !claims.IsAdmin() {
			httpError(w, http.StatusForbidden, errPermission, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeAuthError maps credential failures to 401 and everything else to 500.
func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrInvalidCredentials) {
		httpError(w, http.StatusUnauthorized, errAuthentication, "invalid email or password")
		return
	}
	httpError(w, http.StatusInternalServerError, errAPI, "authentication failed: %v", err)
}
