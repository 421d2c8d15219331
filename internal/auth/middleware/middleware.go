package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/brizzai/graph-mcp/internal/auth/constants"
	"github.com/brizzai/graph-mcp/internal/logger"
	"github.com/brizzai/graph-mcp/internal/session"
	"github.com/brizzai/graph-mcp/internal/utils"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// AuthContext is the key type for the context
type authContextKey string

const (
	// AuthContextKey is used to store auth info in the request context
	AuthContextKey authContextKey = "auth"
)

// AuthInfo represents the authentication information stored in context
type AuthInfo struct {
	UserID string
	Token  string
}

// SessionValidator validates the session cookie of a request.
type SessionValidator interface {
	FromRequest(r *http.Request) (session.Session, error)
}

// FromContext returns the AuthInfo stored by Authenticate or OptionalAuthenticate.
func FromContext(ctx context.Context) (*AuthInfo, bool) {
	info, ok := ctx.Value(AuthContextKey).(*AuthInfo)
	return info, ok && info != nil
}

// WithAuthInfo stores info in ctx.
func WithAuthInfo(ctx context.Context, info *AuthInfo) context.Context {
	return context.WithValue(ctx, AuthContextKey, info)
}

// Authenticate middleware rejects requests without a valid session cookie
func Authenticate(validator SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := validator.FromRequest(r)
			if err != nil {
				logger.Debug("Rejected session cookie",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("reason", err.Error()),
				)
				code := "invalid_session"
				if errors.Is(err, session.ErrNoCookie) {
					code = "unauthorized"
				}
				utils.WriteError(w, code, "A valid session cookie is required", http.StatusUnauthorized)
				return
			}

			ctx := WithAuthInfo(r.Context(), &AuthInfo{
				UserID: s.UID(),
				Token:  s.AccessToken(),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthenticate allows both authenticated and unauthenticated access
func OptionalAuthenticate(validator SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := validator.FromRequest(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithAuthInfo(r.Context(), &AuthInfo{
				UserID: s.UID(),
				Token:  s.AccessToken(),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CORSWithOrigins allows credentialed cross-origin requests from the given
// origins. An empty list allows any origin, without credentials.
func CORSWithOrigins(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   constants.AllowedMethods,
		AllowedHeaders:   constants.AllowedHeaders,
		ExposedHeaders:   constants.ExposedHeaders,
		AllowCredentials: len(origins) > 0,
	})
	return c.Handler
}
