package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/brizzai/graph-mcp/internal/adjuster"
	"github.com/brizzai/graph-mcp/internal/auth"
	"github.com/brizzai/graph-mcp/internal/config"
	"github.com/brizzai/graph-mcp/internal/graph"
	"github.com/brizzai/graph-mcp/internal/logger"
	"github.com/brizzai/graph-mcp/internal/requester"
	"github.com/brizzai/graph-mcp/internal/server"
	"github.com/brizzai/graph-mcp/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the Graph tools over MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := logger.InitLogger(&cfg.Logging); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	var srv *server.Server
	app := fx.New(
		fx.Supply(cfg),
		config.Module,
		requester.Module,
		graph.Module,
		session.Module,
		auth.Module,
		adjuster.Module,
		server.Module,
		fx.WithLogger(logger.FxLogger),
		fx.Populate(&srv),
	)

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}
	defer func() {
		if err := app.Stop(context.Background()); err != nil {
			logger.Error("Failed to stop application", zap.Error(err))
		}
	}()

	return srv.Start(ctx)
}
