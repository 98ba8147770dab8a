package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/session"
	"go.uber.org/zap"
)

// SessionResolver is satisfied by *session.Resolver.
type SessionResolver interface {
	Resolve(ctx context.Context, authorization string) (session.Session, error)
}

// Authenticate resolves the bearer token on every request and stores the
// session in the request context. There is no cached identity: a request that
// fails to resolve is rejected with 401 and the client must log in again.
func Authenticate(resolver SessionResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if !errors.Is(err, session.ErrUnauthenticated) {
					logger.Error("session resolve failed", zap.Error(err), zap.String("path", r.URL.Path))
				}
				writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

// Authorize must run after Authenticate.
func Authorize(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := session.FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
				return
			}
			for _, role := range roles {
				if s.Role() == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "forbidden", "you do not have permission to access this resource")
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
