package commands

import (
	"ganbarometer/internal/telemetry"

	"github.com/spf13/cobra"
)

var (
	serveSource sourceFlags
	serveAddr   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the gauges as Prometheus metrics and a JSON snapshot over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		metrics := telemetry.NewMetrics()
		m, store, err := buildMeter(serveSource, metrics)
		if err != nil {
			return err
		}
		defer store.Close()

		addr := serveAddr
		if addr == "" {
			addr = cfg.MetricsAddr
		}
		return telemetry.Serve(cmd.Context(), addr, m, metrics, cfg.RefreshInterval)
	},
}

func init() {
	addSourceFlags(serveCmd, &serveSource)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default METRICS_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
