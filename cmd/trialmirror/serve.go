// Serve command: read-only HTTP API over the mirror.
package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trialmirror/internal/api"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read API",
	Long: `Serve exposes the mirror over HTTP:

  GET /health                      liveness check
  GET /api/v1/trials?since=DATE    trials updated on or after DATE
  GET /api/v1/runs                 recent sync runs
  GET /metrics                     prometheus metrics

The API only reads committed state; it is safe to run alongside a sync.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (default: listen_addr from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := flagAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api.NewHandler(store))

	logger.Info("read API listening", "addr", addr)
	return http.ListenAndServe(addr, mux)
}
