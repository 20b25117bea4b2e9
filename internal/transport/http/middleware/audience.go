package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-notify-agent/internal/domain"
)

// AudienceAccess gates the per-audience channel routes: the admin channel is
// only visible to JWTs carrying the admin role; the client channel is open
// to any authenticated user. Unknown audience values are rejected here so
// handlers can assume a valid one.
func AudienceAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		audience, err := domain.ParseAudience(chi.URLParam(r, "audience"))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "unknown audience")
			return
		}

		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if audience == domain.AudienceAdmin && claims.Role != domain.RoleAdmin {
			writeJSONError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that allows access only to users whose JWT
// role matches one of the provided role names (e.g. domain.RoleAdmin).
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			for _, role := range allowedRoles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "forbidden")
		})
	}
}
