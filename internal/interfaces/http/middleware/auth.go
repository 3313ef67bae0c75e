package middleware

import (
	"context"
	"net/http"
	"strings"

	"pathway-engine/pkg/api"
	"pathway-engine/pkg/auth"

	"go.uber.org/zap"
)

// contextKey avoids collisions with other packages' context values.
type contextKey struct {
	name string
}

var subjectKey = contextKey{"subject"}

// Subject returns the authenticated token subject from the request context.
func Subject(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey).(string)
	return subject
}

// Authenticate validates the bearer token on each request and stores the
// token subject in the context. When tokens is nil authentication is
// disabled and requests pass through.
func Authenticate(tokens *auth.TokenService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				api.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := tokens.ValidateToken(raw)
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				api.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
