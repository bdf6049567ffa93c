package bootstrap

import (
	"browser-agent/internal/ports"
	"browser-agent/internal/server"
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func runMCP(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	mcpServer *server.Server,
	browser ports.BrowserManager,
	logger *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Launching browser for MCP server...")

			if err := browser.Launch(ctx); err != nil {
				logger.Error("Failed to launch browser", zap.Error(err))

				return err
			}

			go func() {
				if err := mcpServer.Serve(); err != nil {
					logger.Error("MCP server error", zap.Error(err))
				}

				if err := shutdowner.Shutdown(); err != nil {
					logger.Error("Failed to request shutdown", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping MCP server...")

			if err := mcpServer.Shutdown(ctx); err != nil {
				logger.Error("Failed to stop MCP server", zap.Error(err))
			}

			if err := browser.Close(ctx); err != nil {
				logger.Error("Failed to close browser", zap.Error(err))
			}

			return nil
		},
	})
}
