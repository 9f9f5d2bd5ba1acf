// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/laundry-analytics/internal/dashboard"
	"github.com/pdiddy/laundry-analytics/internal/notify"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analytics dashboard API",
	Long: `Serve starts the JSON dashboard API over the order store: overview,
customer insights, forecasts, resources and reports, and laundry forecasts,
alerts, notifications, resources and low-demand planning. It shuts down
gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := dashboard.New(cfg, st, notify.New(cfg.Notify, st, logger), logger)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: server.addr from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}
