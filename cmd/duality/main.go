// duality is a two-token cooperative puzzle for the terminal.
//
// Usage:
//
//	duality list                       - List available levels
//	duality play [level]               - Play a level, or open the menu
//	duality edit [level]               - Open the level editor
//	duality levels export|import|validate|delete
//	duality records [level]            - Show best runs
//	duality serve                      - Start SSH and HTTP servers
//	duality mcp                        - Serve MCP tools on stdio
//
// Global flags:
//
//	--config <path>     - Configuration file
//	--db <path>         - Database path (default: ~/.duality/duality.db)
//	--fps <rate>        - Tick rate of the terminal UI
//	--lang <en|zh>      - UI language
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagFPS      int
	flagLang     string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "duality",
	Short: "Duality - a two-token cooperative puzzle",
	Long: `Duality is a puzzle for one or two players. P1 (White) walks on dark
tiles, P2 (Black) walks on light tiles, and whichever token is resting
becomes the tile its partner needs. Collect every target to clear a level.

Available commands:
  list     - Show all available levels
  play     - Play a level, or open the menu
  edit     - Level editor
  levels   - Export, import, validate and delete level files
  records  - View best runs
  serve    - SSH and HTTP servers for remote and co-op play
  mcp      - MCP tools on stdio for agents

Examples:
  duality list
  duality play first-light
  duality play --file ./my-level.yaml
  duality edit bridge --out ./bridge-remix.yaml
  duality serve
  duality records bridge`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to configuration YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to database (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLang, "lang", "", "UI language: en or zh (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// warn prints a warning and carries on.
func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
