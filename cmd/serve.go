package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foomo/docsite-mcp/config"
	"github.com/foomo/docsite-mcp/mcp"
	"github.com/foomo/docsite-mcp/service"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site config to MCP clients",
		Long: `serve exposes the site config, validation, link probing and page documents
as MCP tools, over stdio or with --http over streamable HTTP plus SSE endpoints.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
	cmd.Flags().String("http", "", "HTTP server address (e.g., ':8080'), stdio when empty")
	cmd.Flags().String("endpoint", config.DefaultEndpoint, "MCP endpoint path of the HTTP server")
	cmd.Flags().Bool("watch", false, "reload the site config when it changes")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	l, settings := a.l, a.settings
	c, err := loadSite(ctx, l, settings, nil)
	if err != nil {
		return err
	}
	svc := service.NewService(l, c, siteSettings(settings), nil)
	s := mcp.NewServer(nil, svc)

	var sseServer *mcp.MCPSSEServer
	reload := func() {
		c, err := loadSite(ctx, l, settings, nil)
		if err != nil {
			l.Error("failed to reload site config, keeping the current one", zap.Error(err))
			return
		}
		svc.Swap(c)
		findings, err := svc.Validate(ctx)
		if err != nil {
			l.Warn("failed to validate reloaded site config", zap.Error(err))
		}
		for _, f := range findings {
			l.Warn("site config finding", zap.String("path", f.Path), zap.String("reason", f.Reason))
		}
		if sseServer != nil {
			sseServer.NotifyReload(c, findings)
		}
	}

	if settings.HTTPAddr == "" {
		if settings.Watch {
			if err := watchFile(ctx, l, settings.ConfigFile, watchDebounce, reload); err != nil {
				return err
			}
		}
		l.Info("starting MCP server in stdio mode")
		return server.ServeStdio(s)
	}

	httpHandler := mcp.NewMcpHTTPSSEServer(l, s, svc, settings.Endpoint, nil)
	sseServer = httpHandler.GetSSEServer()
	defer sseServer.Close()
	if settings.Watch {
		if err := watchFile(ctx, l, settings.ConfigFile, watchDebounce, reload); err != nil {
			return err
		}
	}

	httpServer := &http.Server{
		Addr:              settings.HTTPAddr,
		Handler:           httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		l.Info("starting MCP server", zap.String("addr", settings.HTTPAddr), zap.String("endpoint", settings.Endpoint))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		l.Info("shutting down MCP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
