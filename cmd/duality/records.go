package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-duality/internal/i18n"
	"github.com/vovakirdan/tui-duality/internal/platform/tui"
	"github.com/vovakirdan/tui-duality/internal/registry"
)

var (
	flagRecordsPlain bool
	flagRecordsClear bool
)

var recordsCmd = &cobra.Command{
	Use:   "records [level]",
	Short: "Show the best runs for a level",
	Long: `Display the runs with the fewest moves. Without --plain an interactive
table opens where Left/Right change the level. --clear forgets every run
of the named level.

Examples:
  duality records
  duality records bridge --plain
  duality records bridge --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRecords,
}

func init() {
	recordsCmd.Flags().BoolVar(&flagRecordsPlain, "plain", false, "Print the table instead of opening the viewer")
	recordsCmd.Flags().BoolVar(&flagRecordsClear, "clear", false, "Delete all runs of the level")
}

func runRecords(cmd *cobra.Command, args []string) {
	a := setup(io.Discard)
	defer a.close()

	if a.store == nil {
		fail("no database, no records")
	}

	levelID := ""
	if len(args) == 1 {
		levelID = args[0]
		if !registry.Exists(levelID) {
			fmt.Fprintf(os.Stderr, "Error: unknown level %q\n", levelID)
			fmt.Fprintln(os.Stderr, "Run 'duality list' to see available levels.")
			os.Exit(1)
		}
	}

	if flagRecordsClear {
		if levelID == "" {
			fail("--clear needs a level")
		}
		if err := a.store.ClearRuns(levelID); err != nil {
			fail("%v", err)
		}
		fmt.Printf("Cleared runs for %s\n", levelID)
		return
	}

	if !flagRecordsPlain {
		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}
		if err := tui.RunScoreboard(a.store, i18n.Code(a.cfg.UI.Lang), width, height, levelID); err != nil {
			fail("%v", err)
		}
		return
	}

	if levelID == "" {
		if all := registry.List(); len(all) > 0 {
			levelID = all[0].ID
		}
	}
	info, _ := registry.Info(levelID)

	runs, err := a.store.BestRuns(levelID, 10)
	if err != nil {
		fail("retrieving runs: %v", err)
	}

	fmt.Printf("Best runs - %s\n", info.Title)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'duality play %s' to set the first record!\n", levelID)
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-6s  %-20s  %s\n", "Rank", "Moves", "Player", "Date")
	fmt.Printf("  %-4s  %-6s  %-20s  %s\n", "----", "-----", "------", "----")

	for i, r := range runs {
		player := r.Player
		if r.Room != "" {
			player += " @" + r.Room
		}
		fmt.Printf("  %-4d  %-6d  %-20s  %s\n", i+1, r.Moves, player, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	if stats, err := a.store.LevelStats(levelID); err == nil && stats != nil {
		fmt.Println()
		fmt.Printf("Clears: %d\n", stats.Clears)
	}
}
