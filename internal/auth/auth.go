package auth

import (
	"net/http"

	"github.com/brizzai/graph-mcp/internal/auth/constants"
	"github.com/brizzai/graph-mcp/internal/auth/handlers"
	"github.com/brizzai/graph-mcp/internal/auth/middleware"
	"github.com/brizzai/graph-mcp/internal/config"
	"github.com/brizzai/graph-mcp/internal/logger"
	"github.com/brizzai/graph-mcp/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Service wires cookie-session authentication into the HTTP transports
type Service struct {
	enabled      bool
	allowOrigins []string
	validator    *session.Validator
	handler      *handlers.Handler
}

// ServiceParams holds the dependencies of Service
type ServiceParams struct {
	fx.In

	Config    *config.AuthConfig
	Validator *session.Validator
}

// NewService creates a new authentication service
func NewService(params ServiceParams) *Service {
	if params.Config.Enabled {
		logger.Info("Session authentication enabled",
			zap.String("cookie", session.CookieName(params.Validator.AppID)),
			zap.Strings("allow_origins", params.Config.AllowOrigins),
		)
	}
	return &Service{
		enabled:      params.Config.Enabled,
		allowOrigins: params.Config.AllowOrigins,
		validator:    params.Validator,
		handler:      handlers.NewHandler(params.Validator),
	}
}

// Enabled reports whether requests must carry a valid session cookie
func (s *Service) Enabled() bool {
	return s.enabled
}

// RegisterRoutes registers the session endpoint on mux
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle(constants.SessionPath, s.WrapWithCORS(http.HandlerFunc(s.handler.HandleSession)))
}

// Protect wraps next with Authenticate when authentication is enabled and
// with OptionalAuthenticate otherwise, so a caller's own session token is
// used whenever one is presented.
func (s *Service) Protect(next http.Handler) http.Handler {
	var h http.Handler
	if s.enabled {
		h = middleware.Authenticate(s.validator)(next)
	} else {
		h = middleware.OptionalAuthenticate(s.validator)(next)
	}
	return s.WrapWithCORS(h)
}

// WrapWithCORS applies the configured CORS policy
func (s *Service) WrapWithCORS(next http.Handler) http.Handler {
	return middleware.CORSWithOrigins(s.allowOrigins)(next)
}

// Module provides the authentication service
var Module = fx.Module("auth",
	fx.Provide(NewService),
)
