package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/yousuf/mapindex/internal/server"
	"github.com/yousuf/mapindex/internal/session"
)

func getCmdServe(gs *globalState) *cobra.Command {
	var transport, addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the source map tools over MCP",
		Long: `Serve the source map tools over MCP.

  The stdio transport talks over stdin and stdout and logs to stderr. The
  http transport serves the streamable HTTP protocol on --addr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("transport") {
				gs.cfg.Server.Transport = transport
			}
			if cmd.Flags().Changed("addr") {
				gs.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			maps := gs.newManager()
			defer maps.Clear()

			switch gs.cfg.Server.Transport {
			case "stdio":
				gs.logger.Info("Serving MCP over stdio")
				err := server.NewMcpServer(maps, gs.logger).Run(ctx, &mcp.StdioTransport{})
				if err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			case "http":
				return serveHTTP(ctx, gs, maps)
			}
			return fmt.Errorf("invalid transport %q (must be stdio or http)", gs.cfg.Server.Transport)
		},
	}

	serveCmd.Flags().StringVar(&transport, "transport", "", "stdio or http, overrides the config")
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address of the http transport, overrides the config")
	return serveCmd
}

func serveHTTP(ctx context.Context, gs *globalState, maps *session.Manager) error {
	cfg := gs.cfg.Server

	handler := mcp.NewStreamableHTTPHandler(func(req *http.Request) *mcp.Server {
		return server.NewMcpServer(maps, gs.logger)
	}, &mcp.StreamableHTTPOptions{})

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		gs.logger.WithField("addr", cfg.Addr).Info("mapindex MCP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	gs.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	gs.logger.Info("Server stopped")
	return nil
}
