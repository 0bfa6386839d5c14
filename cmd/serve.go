/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/josephgoksu/taskgraph/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task graph over HTTP",
	Long: `Start the JSON API under /api and Prometheus metrics at /metrics.

The listen address and allowed CORS origins come from server.addr and
server.allowed_origins (TASKGRAPH_SERVER_ADDR, TASKGRAPH_SERVER_ALLOWED_ORIGINS).
When events.nats_url is set, every committed change is published to NATS.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		return runServe(cmd.Context(), addr)
	},
}

func runServe(parent context.Context, addr string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watchConfig()
	return withApp("serve", func(rt *appRuntime) error {
		srv := server.New(rt.ctx, server.Options{
			Addr:           addr,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Logger:         log,
			Metrics:        rt.metrics,
		})
		return srv.Run(ctx)
	})
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
}
