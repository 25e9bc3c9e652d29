package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-duality/internal/games/duality"
	"github.com/vovakirdan/tui-duality/internal/games/duality/levels"
	"github.com/vovakirdan/tui-duality/internal/platform/tui"
	"github.com/vovakirdan/tui-duality/internal/registry"
)

var flagPlayFile string

var playCmd = &cobra.Command{
	Use:   "play [level]",
	Short: "Play a level",
	Long: `Play a level directly, or open the menu when no level is given.

Controls:
  WASD/Arrows  - Move the active token
  Space/E      - Switch tokens
  R            - Restart the level
  P            - Pause
  Esc/B        - Back to the menu
  Q/Ctrl+C     - Quit

Examples:
  duality play
  duality play first-light
  duality play --file ./levels/my-level.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlayFile, "file", "", "Play a level file (.yaml or .json) without adding it to the catalog")
}

func runPlay(cmd *cobra.Command, args []string) {
	a := setup(io.Discard)
	defer a.close()
	opts := a.options()

	var game registry.Game
	switch {
	case flagPlayFile != "":
		lvl, err := levels.NewLoader(".").LoadFile(flagPlayFile)
		if err != nil {
			fail("%v", err)
		}
		game = duality.New(registry.LevelInfo{ID: lvl.ID, Title: lvl.Title(), Source: registry.SourceFile}, lvl.Data)
		// Records are kept for catalog levels only.
		opts.Store = nil

	case len(args) == 1:
		levelID := args[0]
		if !registry.Exists(levelID) {
			fmt.Fprintf(os.Stderr, "Error: unknown level %q\n", levelID)
			fmt.Fprintln(os.Stderr, "Run 'duality list' to see available levels.")
			os.Exit(1)
		}
		g, err := registry.Create(levelID)
		if err != nil {
			fail("creating game: %v", err)
		}
		game = g

	default:
		if err := tui.RunSession(opts); err != nil {
			fail("running session: %v", err)
		}
		return
	}

	if err := tui.Run(game, opts); err != nil {
		fail("running game: %v", err)
	}
}
