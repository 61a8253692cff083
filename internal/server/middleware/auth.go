package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
)

// SessionResolver maps a bearer token to a session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (domain.Session, error)
}

type contextKey string

const sessionKey contextKey = "session"

// openPaths are reachable without a session: the health probe, login, and the
// read-only websocket stream.
func isOpen(r *http.Request) bool {
	switch {
	case r.Method == http.MethodOptions:
		return true
	case r.URL.Path == "/api/health":
		return true
	case r.URL.Path == "/api/session" && r.Method == http.MethodPost:
		return true
	case r.URL.Path == "/ws":
		return true
	}
	return false
}

// Auth returns middleware that resolves the Authorization bearer token to a
// session and attaches it to the request context. Requests to open paths pass
// through without a token.
func Auth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isOpen(r) {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r)
			if token == "" {
				writeUnauthorized(w, "missing authentication token")
				return
			}

			session, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session attached by Auth, if any.
func SessionFrom(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(sessionKey).(domain.Session)
	return s, ok
}

// RoleFrom returns the authenticated role attached by Auth. A missing session
// yields the zero Role, which no command accepts.
func RoleFrom(ctx context.Context) domain.Role {
	s, _ := SessionFrom(ctx)
	return s.Role
}

// extractToken looks for a token in the Authorization header (Bearer scheme).
func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}

// writeUnauthorized sends a 401 response with a JSON error body.
func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
