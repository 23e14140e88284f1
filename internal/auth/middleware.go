package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// ClaimsFromContext extracts JWT claims from request context.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// WithClaims returns a context carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Middleware authenticates requests from the session cookie, falling back to
// an Authorization: Bearer header.
type Middleware struct {
	jwt          *JWTManager
	secureCookie bool
}

// NewMiddleware creates session middleware backed by jwtMgr.
func NewMiddleware(jwtMgr *JWTManager, secureCookie bool) *Middleware {
	return &Middleware{jwt: jwtMgr, secureCookie: secureCookie}
}

// RequireSession answers 401 JSON when the request has no valid session.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			ClearSessionCookie(w, m.secureCookie)
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not logged in")
			return
		}
		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			ClearSessionCookie(w, m.secureCookie)
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequirePageSession redirects to the login page when the request has no valid session.
func (m *Middleware) RequirePageSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		claims, err := m.jwt.ValidateToken(token)
		if token == "" || err != nil {
			ClearSessionCookie(w, m.secureCookie)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func extractToken(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"code":    code,
		"message": message,
	})
}
