package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/mediamatch/internal/api"
	"github.com/Nomadcxx/mediamatch/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server.

Endpoints:
  GET  /api/v1/health      - Health check
  GET  /api/v1/normalize   - Normalize a release name
  GET  /api/v1/lookup      - Catalog lookup
  POST /api/v1/classify    - Classify a batch of paths

Examples:
  mediamatch serve                  # Listen on server.addr from config
  mediamatch serve --addr :9000     # Listen on port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			srv, err := a.httpServer()
			if err != nil {
				return err
			}
			return runHTTPServer(cmd.Context(), srv, a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (default from config)")

	return cmd
}

func (a *app) httpServer() (*http.Server, error) {
	grouper, err := a.grouper()
	if err != nil {
		return nil, err
	}
	server := api.NewServer(a.catalog, grouper, a.cfg, a.logger)
	return &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// runHTTPServer serves until ctx is done, then shuts down gracefully.
func runHTTPServer(ctx context.Context, srv *http.Server, logger *logging.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server", "API server listening", logging.F("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
		logger.Info("server", "Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
