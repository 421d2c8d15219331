// Package server provides the MCP (Model Context Protocol) server that exposes
// the Graph client as tools.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/brizzai/graph-mcp/internal/adjuster"
	"github.com/brizzai/graph-mcp/internal/auth"
	"github.com/brizzai/graph-mcp/internal/auth/middleware"
	"github.com/brizzai/graph-mcp/internal/config"
	"github.com/brizzai/graph-mcp/internal/graph"
	"github.com/brizzai/graph-mcp/internal/logger"
	"github.com/brizzai/graph-mcp/internal/server/handler"
	"github.com/brizzai/graph-mcp/internal/server/tool"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// shutdownTimeout is the maximum time to wait for server shutdown
	shutdownTimeout = 5 * time.Second
)

// Server represents the MCP server instance that handles tool management,
// authentication, and request processing. It supports multiple operation modes
// including SSE, HTTP, and STDIO.
type Server struct {
	config   *config.Config
	mcp      *mcpserver.MCPServer
	adjuster *adjuster.Adjuster
	handler  *handler.Handler
	tool     *tool.Handler
	tools    []string
}

// Params holds the dependencies of Server
type Params struct {
	fx.In

	Config   *config.Config
	Client   *graph.Client
	Auth     *auth.Service
	Adjuster *adjuster.Adjuster   `optional:"true"`
	Registry *prometheus.Registry `optional:"true"`
}

// NewServer creates a new MCP server instance and registers the Graph tools
// selected by the adjustments.
func NewServer(p Params) (*Server, error) {
	if p.Config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if p.Client == nil {
		return nil, fmt.Errorf("graph client cannot be nil")
	}
	if p.Auth == nil {
		return nil, fmt.Errorf("auth service cannot be nil")
	}

	mcpServer := mcpserver.NewMCPServer(
		p.Config.Server.Name,
		p.Config.Server.Version,
		mcpserver.WithToolCapabilities(false),
	)

	// sessions are validated per HTTP request; stdio has no cookies to check
	authRequired := p.Auth.Enabled() && p.Config.Server.Mode != config.ServerModeSTDIO

	srv := &Server{
		config:   p.Config,
		mcp:      mcpServer,
		adjuster: p.Adjuster,
		handler:  handler.NewHandler(p.Auth, p.Registry),
		tool:     tool.NewHandler(p.Client, authRequired),
	}
	srv.setupTools()

	return srv, nil
}

func (s *Server) setupTools() {
	for _, def := range tool.Definitions() {
		t := def.Tool
		if !s.adjuster.Enabled(t.Name) {
			logger.Debug("Skipping tool", zap.String("name", t.Name))
			continue
		}
		t.Description = s.adjuster.Description(t.Name, t.Description)

		logger.Debug("Adding tool", zap.String("name", t.Name))
		s.mcp.AddTool(t, s.tool.CreateHandler(&t, def.Call))
		s.tools = append(s.tools, t.Name)
	}
	logger.Info("Registered Graph tools", zap.Strings("tools", s.tools))
}

// Tools returns the names of the registered tools.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// authContext carries the caller identity found by the session middleware
// into the context the MCP server hands to tool handlers.
func authContext(ctx context.Context, r *http.Request) context.Context {
	if info, ok := middleware.FromContext(r.Context()); ok {
		return middleware.WithAuthInfo(ctx, info)
	}
	return ctx
}

func (s *Server) address() string {
	return fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
}

// SSEHandler returns the full HTTP handler stack for SSE mode.
func (s *Server) SSEHandler() http.Handler {
	sseServer := mcpserver.NewSSEServer(
		s.mcp,
		mcpserver.WithBaseURL(fmt.Sprintf("http://%s", s.address())),
		mcpserver.WithSSEContextFunc(authContext),
	)
	return s.handler.CreateHTTPHandler(sseServer)
}

// HTTPHandler returns the full HTTP handler stack for streamable HTTP mode.
func (s *Server) HTTPHandler() http.Handler {
	httpServer := mcpserver.NewStreamableHTTPServer(
		s.mcp,
		mcpserver.WithHTTPContextFunc(authContext),
	)
	return s.handler.CreateHTTPHandler(httpServer)
}

func (s *Server) ServeSSE(ctx context.Context) error {
	logger.Info("Starting SSE server")
	return s.serveHTTP(ctx, s.SSEHandler(), "SSE")
}

func (s *Server) ServeHTTP(ctx context.Context) error {
	logger.Info("Starting HTTP server")
	return s.serveHTTP(ctx, s.HTTPHandler(), "HTTP")
}

func (s *Server) serveHTTP(ctx context.Context, handler http.Handler, mode string) error {
	addr := s.address()
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel for server errors
	errChan := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server",
			zap.String("mode", mode),
			zap.String("address", addr),
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down server",
			zap.String("mode", mode),
			zap.Duration("timeout", shutdownTimeout),
		)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil

	case err := <-errChan:
		return err
	}
}

func (s *Server) ServeSTDIO(ctx context.Context) error {
	return s.serveStdio(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serveStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	logger.Info("Starting STDIO server")
	stdioServer := mcpserver.NewStdioServer(s.mcp)
	err := stdioServer.Listen(ctx, in, out)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Start starts the server in the configured mode (SSE, HTTP, or STDIO).
// It returns an error if the server fails to start or encounters an error
// during operation.
func (s *Server) Start(ctx context.Context) error {
	logger.Info("Starting server",
		zap.String("mode", string(s.config.Server.Mode)),
		zap.String("version", s.config.Server.Version),
	)

	switch s.config.Server.Mode {
	case config.ServerModeSSE:
		return s.ServeSSE(ctx)
	case config.ServerModeHTTP:
		return s.ServeHTTP(ctx)
	case config.ServerModeSTDIO:
		return s.ServeSTDIO(ctx)
	default:
		return fmt.Errorf("unsupported server mode: %s", s.config.Server.Mode)
	}
}

// Module provides the MCP server dependencies
var Module = fx.Module("mcp_server",
	fx.Provide(
		NewServer,
	),
)
