package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ganbarometer/internal/config"
	"ganbarometer/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "ganbarometer",
	Short: "GanbarOmeter derives review pace and difficulty gauges from WaniKani reviews",
	Long: `GanbarOmeter segments your recent WaniKani reviews into sessions and scores
them into difficulty and pace gauges plus a review-interval histogram.

Run without a subcommand to serve the gauges to an MCP client over stdio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logFile, err = logging.AttachFile(cfg.LogDir)
		if err != nil {
			return err
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("GanbarOmeter starting")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			_ = logFile.Close()
		}
	},
	RunE: runMCP,
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
