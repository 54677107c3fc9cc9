package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cryptofolio/internal/auth"
	"cryptofolio/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the journal's HTTP API.

The API exposes the same journal over HTTP with per-user sessions, plus the
community chat websocket and the AI coach endpoint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store is not available")
			}

			if port == 0 {
				port = app.Config.Server.Port
			}

			srv := server.New(server.Config{
				Port:           port,
				AllowedOrigins: app.Config.Server.AllowedOrigins,
				Log:            app.Logger,
				Store:          app.Store,
				Auth:           auth.NewLocalProvider(app.Store, app.Config.Auth.SessionTTL),
				Trading:        app.Trading,
				Market:         app.Market,
				Hub:            app.Hub,
				Coach:          app.Coach,
			})

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			output.Info("Listening on :%d", port)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
			}

			output.Println()
			output.Info("Shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config)")
	return cmd
}
