package auth

import "net/http"

// RequireAdmin rejects authenticated non-admin sessions with 403 and message.
// It must run after RequireSession or RequirePageSession.
func RequireAdmin(message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not logged in")
				return
			}
			if !claims.IsAdmin() {
				writeError(w, http.StatusForbidden, "FORBIDDEN", message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
