// Package handler provides HTTP request handling for the MCP server.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/brizzai/graph-mcp/internal/auth"
	"github.com/brizzai/graph-mcp/internal/auth/constants"
	"github.com/brizzai/graph-mcp/internal/logger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type requestIDKey struct{}

// Handler manages HTTP request handling and middleware configuration.
type Handler struct {
	auth     *auth.Service
	registry *prometheus.Registry
}

// NewHandler creates a new HTTP handler. registry may be nil, in which case
// no metrics endpoint is mounted.
func NewHandler(auth *auth.Service, registry *prometheus.Registry) *Handler {
	return &Handler{
		auth:     auth,
		registry: registry,
	}
}

// CreateHTTPHandler creates an HTTP handler with the appropriate middleware stack.
// The MCP handler is mounted at "/" behind session authentication.
func (h *Handler) CreateHTTPHandler(mcpHandler http.Handler) http.Handler {
	mux := http.NewServeMux()

	if h.registry != nil {
		mux.Handle(constants.MetricsPath, promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
	}

	h.auth.RegisterRoutes(mux)
	mux.Handle("/", h.auth.Protect(mcpHandler))
	if h.auth.Enabled() {
		logger.Info("Enabled session authentication for MCP routes")
	} else {
		logger.Info("Running without required authentication")
	}

	return LoggingMiddleware(mux)
}

// RequestID returns the id LoggingMiddleware assigned to the request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggingMiddleware logs information about each incoming request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(constants.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(constants.RequestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		logger.Info("HTTP Request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status", rw.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.String("user_agent", r.UserAgent()),
		)
	})
}

// responseWriter is a custom ResponseWriter that captures the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code and passes it to the underlying ResponseWriter
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the wrapper
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
