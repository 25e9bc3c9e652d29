package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-duality/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available levels",
	Long: `Shows every level in the catalog: the campaign first, then levels from
the level directory and the database.`,
	Run: runList,
}

func runList(cmd *cobra.Command, args []string) {
	a := setup(io.Discard)
	defer a.close()

	infos := registry.List()
	if len(infos) == 0 {
		fmt.Println("No levels available.")
		return
	}

	fmt.Println("Available levels:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	maxTitleLen := 5
	for _, info := range infos {
		maxIDLen = max(maxIDLen, len(info.ID))
		maxTitleLen = max(maxTitleLen, len(info.Title))
	}

	// Print header
	fmt.Printf("  %-*s  %-*s  %-8s  %s\n", maxIDLen, "ID", maxTitleLen, "Title", "Source", "Best")
	fmt.Printf("  %-*s  %-*s  %-8s  %s\n", maxIDLen, "--", maxTitleLen, "-----", "------", "----")

	for _, info := range infos {
		best := "-"
		if a.store != nil {
			if moves, ok, err := a.store.BestMoves(info.ID); err == nil && ok {
				best = fmt.Sprintf("%d", moves)
			}
		}
		fmt.Printf("  %-*s  %-*s  %-8s  %s\n", maxIDLen, info.ID, maxTitleLen, info.Title, info.Source, best)
	}

	fmt.Println()
	fmt.Println("Run 'duality play <id>' to play a level.")
}
