package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-duality/internal/coop"
	"github.com/vovakirdan/tui-duality/internal/registry"
	"github.com/vovakirdan/tui-duality/internal/transport/mcp"
)

var (
	flagMCPLevel  string
	flagMCPPlayer string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve MCP tools on stdio",
	Long: `Run an MCP server on stdin/stdout so an agent can play. The agent gets
one solo room and the tools level_list, level_load, state, move, switch,
reset and describe_cell. Cleared levels are recorded like any other run.

Logs go to stderr.

Examples:
  duality mcp
  duality mcp --level bridge --player claude`,
	Run: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&flagMCPLevel, "level", "", "Level opened by the first call (default: first campaign level)")
	mcpCmd.Flags().StringVar(&flagMCPPlayer, "player", "agent", "Name recorded for cleared runs")
}

func runMCP(_ *cobra.Command, _ []string) {
	a := setup(os.Stderr)
	defer a.close()

	if flagMCPLevel != "" && !registry.Exists(flagMCPLevel) {
		fail("unknown level %q", flagMCPLevel)
	}

	coordinator := coop.NewCoordinator(coop.Config{
		MaxRooms: 1,
		Levels:   registry.Level,
		Logger:   a.log,
	}, nil)
	if a.store != nil {
		coordinator.SetRunSaver(a.store)
	}
	coordinator.Start()
	defer coordinator.Stop()

	server := mcp.New(coordinator, mcp.Config{
		Player: flagMCPPlayer,
		Level:  flagMCPLevel,
		Logger: a.log,
	})
	defer server.Close()

	if err := server.Serve(); err != nil {
		a.log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
