package commands

import (
	"fmt"

	"ganbarometer/internal/meter"
	"ganbarometer/internal/visuals"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	showSource  sourceFlags
	showMermaid bool
	showJSON    bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render the gauges for the current lookback window",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, store, err := buildMeter(showSource)
		if err != nil {
			return err
		}
		defer store.Close()

		report, err := m.Render(cmd.Context())
		if err != nil {
			return err
		}
		return printReport(cmd, report)
	},
}

func printReport(cmd *cobra.Command, report meter.Report) error {
	out := cmd.OutOrStdout()
	switch {
	case showJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case showMermaid || cfg.EnableMermaidCharts:
		_, err := fmt.Fprint(out, visuals.Markdown(report))
		return err
	default:
		return visuals.Terminal{Out: out}.Publish(cmd.Context(), report)
	}
}

func addSourceFlags(cmd *cobra.Command, f *sourceFlags) {
	cmd.Flags().StringVar(&f.fromFile, "from-file", "", "replay reviews from a JSONL file instead of the WaniKani API")
	cmd.Flags().IntVar(&f.apprentice, "apprentice", 0, "apprentice item count to use with --from-file")
	cmd.Flags().IntVar(&f.newKanji, "new-kanji", 0, "new kanji count to use with --from-file")
}

func init() {
	addSourceFlags(showCmd, &showSource)
	showCmd.Flags().BoolVar(&showMermaid, "mermaid", false, "print Markdown with Mermaid charts")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(showCmd)
}
