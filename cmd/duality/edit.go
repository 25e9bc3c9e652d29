package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	dcore "github.com/vovakirdan/tui-duality/internal/games/duality/core"
	"github.com/vovakirdan/tui-duality/internal/games/duality/levels"
	"github.com/vovakirdan/tui-duality/internal/platform/tui"
	"github.com/vovakirdan/tui-duality/internal/registry"
)

var (
	flagEditFile string
	flagEditOut  string
)

var editCmd = &cobra.Command{
	Use:   "edit [level]",
	Short: "Open the level editor",
	Long: `Edit a catalog level, a level file, or a new blank level.

Built-in levels are never overwritten: saving one stores a copy named
"<id>-copy". Ctrl+S saves to the database, Ctrl+E writes the level to
--out (default: ./levels/<id>.yaml).

Controls:
  Arrows/WASD/HJKL  - Move the cursor
  Tab / 1-7         - Pick a tool (wall, dark, light, void, P1, P2, target)
  Space/Enter/Click - Paint (drag to paint a stroke)
  +/- and ]/[       - Resize width and height
  V                 - Check the level can be solved
  T                 - Test play
  Esc               - Quit

Examples:
  duality edit
  duality edit bridge
  duality edit --file ./levels/mine.yaml --out ./levels/mine.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runEdit,
}

func init() {
	editCmd.Flags().StringVar(&flagEditFile, "file", "", "Level file to edit")
	editCmd.Flags().StringVar(&flagEditOut, "out", "", "File written by Ctrl+E (.yaml or .json)")
}

func runEdit(cmd *cobra.Command, args []string) {
	a := setup(io.Discard)
	defer a.close()
	opts := a.options()
	opts.ExportDir = "levels"

	var (
		id, name string
		level    *dcore.Level
	)
	switch {
	case flagEditFile != "":
		lvl, err := levels.NewLoader(".").LoadFile(flagEditFile)
		if err != nil {
			fail("%v", err)
		}
		id, name, level = lvl.ID, lvl.Name, lvl.Data
		if flagEditOut == "" {
			flagEditOut = flagEditFile
		}

	case len(args) == 1:
		info, ok := registry.Info(args[0])
		if !ok {
			fail("unknown level %q", args[0])
		}
		data, err := registry.Level(info.ID)
		if err != nil {
			fail("%v", err)
		}
		id, name, level = info.ID, info.Title, data
		if info.Source == registry.SourceCampaign {
			id, name = info.ID+"-copy", info.Title+" (copy)"
		}

	default:
		id = fmt.Sprintf("custom-%d", time.Now().Unix())
	}

	m := tui.NewEditorModel(id, name, level, opts)
	if flagEditOut != "" {
		m = m.WithExportPath(flagEditOut)
	}
	final, err := tui.RunEditor(m)
	if err != nil {
		fail("running editor: %v", err)
	}

	if problems := dcore.Lint(final); len(problems) > 0 {
		fmt.Printf("Level %s has problems:\n", id)
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
	}
}
