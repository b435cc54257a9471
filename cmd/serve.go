package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/internal/httpapi"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 10 * time.Second

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Pulse HTTP API.",
	Long: `Serve delivery metrics over HTTP.

Routes:
  GET  /health                     - liveness and store data version
  GET  /api/v1/metrics/{family}    - pr, issues, commits, dora, runners or all
  POST /api/v1/records             - ingest a JSON array of raw records

Query parameters on the metrics routes (repo, team, group_by, start,
end) override the configured defaults per request.

Examples:
  # Serve on the default address with a SQLite store
  pulse serve --store-backend sqlite

  # Custom address
  pulse serve --addr :9090`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		server := httpapi.NewServer(store, cache, resolver, cfg)
		app := server.App()

		errCh := make(chan error, 1)
		go func() {
			errCh <- app.Listen(cfg.ServeAddr)
		}()
		fmt.Printf("Serving metrics on %s (store backend: %s)\n", cfg.ServeAddr, cfg.StoreBackend)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-quit:
			fmt.Printf("Received %s, shutting down\n", sig)
		}

		shutdownCtx, cancel := context.WithTimeout(rootCtx, shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			contract.LogWarn("Forced shutdown", err)
		}
		return store.Close()
	},
}
