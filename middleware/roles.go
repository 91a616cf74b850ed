package middleware

import (
	"net/http"
	"slices"
)

// RequireRole rejects requests whose account lacks role with 403. It must
// be mounted behind [RequireAccessToken].
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Missing Authorization Header")
				return
			}
			if !slices.Contains(u.RoleNames(), role) {
				writeError(w, http.StatusForbidden, "Forbidden.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
