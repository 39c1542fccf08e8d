package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexanderramin/waypoint/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var accessLog bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			shutdown := 10 * time.Second
			if app.Config != nil {
				if addr == "" {
					addr = app.Config.HTTP.Addr
				}
				shutdown = app.Config.HTTP.ShutdownTimeout
			}
			if addr == "" {
				return fmt.Errorf("no listen address: pass --addr or set http.addr")
			}

			deps := server.Deps{
				Projects:    app.Projects,
				Templates:   app.Templates,
				Features:    app.Features,
				Collections: app.Collections,
				Logger:      app.logger(),
			}
			if accessLog {
				deps.AccessLog = cmd.ErrOrStderr()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(deps).Run(ctx, addr, shutdown)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&accessLog, "access-log", false, "Log every request to stderr")
	return cmd
}
