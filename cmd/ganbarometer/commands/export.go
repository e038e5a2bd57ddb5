package commands

import (
	"os"
	"path/filepath"

	"ganbarometer/internal/visuals"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	exportSource sourceFlags
	exportOut    string
	exportOpen   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the report as Markdown with Mermaid charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, store, err := buildMeter(exportSource)
		if err != nil {
			return err
		}
		defer store.Close()

		report, err := m.Render(cmd.Context())
		if err != nil {
			return err
		}

		path := exportOut
		if path == "" {
			path = filepath.Join(cfg.DataPath, "ganbarometer.md")
		}
		if err := os.WriteFile(path, []byte(visuals.Markdown(report)), 0644); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("Report exported")

		if exportOpen {
			return browser.OpenFile(path)
		}
		return nil
	},
}

func init() {
	addSourceFlags(exportCmd, &exportSource)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default <DATA_PATH>/ganbarometer.md)")
	exportCmd.Flags().BoolVar(&exportOpen, "open", false, "open the exported report with the default viewer")
	rootCmd.AddCommand(exportCmd)
}
