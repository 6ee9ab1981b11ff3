package cmd

import (
	"github.com/spf13/cobra"

	"textops/server"
	"textops/telemetry"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve transformations over HTTP",
	Long: `Starts an HTTP server exposing the transformation catalog:
  GET  /v1/transformations  list the catalog
  POST /v1/transform        apply {"id": ..., "text": ...}
  GET  /healthz             liveness
  GET  /metrics             Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}

		metrics := telemetry.NewMetrics()
		srv := server.New(newDispatcher(cfg, metrics), metrics.Handler())
		return srv.Run(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "address to listen on (defaults to server.addr from the configuration)")
	rootCmd.AddCommand(serveCmd)
}
