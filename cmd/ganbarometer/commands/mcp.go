package commands

import (
	"ganbarometer/internal/mcp"

	"github.com/spf13/cobra"
)

var mcpSource sourceFlags

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the gauges to an MCP client over stdio",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	m, store, err := buildMeter(mcpSource)
	if err != nil {
		return err
	}
	defer store.Close()

	server := mcp.NewServer(m, store, cfg.SettingsID, Version)
	return server.Start(cmd.Context())
}

func init() {
	addSourceFlags(mcpCmd, &mcpSource)
	rootCmd.AddCommand(mcpCmd)
}
