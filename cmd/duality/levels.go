package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-duality/internal/games/duality"
	dcore "github.com/vovakirdan/tui-duality/internal/games/duality/core"
	"github.com/vovakirdan/tui-duality/internal/games/duality/levels"
	"github.com/vovakirdan/tui-duality/internal/registry"
	"github.com/vovakirdan/tui-duality/internal/storage"
)

const solveLimit = 500000

var (
	flagExportFormat string
	flagImportID     string
	flagShowSolution bool
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Export, import, validate and delete level files",
	Long: `Level files are YAML (an ASCII map plus metadata) or JSON (the exchange
format: width, height, terrain, starts and targets).

Examples:
  duality levels export bridge ./bridge.yaml
  duality levels export bridge --format json > bridge.json
  duality levels import ./mine.yaml
  duality levels validate ./levels/*.yaml
  duality levels delete mine`,
}

var levelsExportCmd = &cobra.Command{
	Use:   "export <level> [file]",
	Short: "Write a catalog level to a file or stdout",
	Args:  cobra.RangeArgs(1, 2),
	Run:   runLevelsExport,
}

var levelsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Save a level file to the database",
	Args:  cobra.ExactArgs(1),
	Run:   runLevelsImport,
}

var levelsValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check level files load and can be solved",
	Args:  cobra.MinimumNArgs(1),
	Run:   runLevelsValidate,
}

var levelsDeleteCmd = &cobra.Command{
	Use:   "delete <level>",
	Short: "Remove an imported level and its runs",
	Args:  cobra.ExactArgs(1),
	Run:   runLevelsDelete,
}

func init() {
	levelsExportCmd.Flags().StringVar(&flagExportFormat, "format", "", "yaml or json (default: from the file extension, yaml on stdout)")
	levelsImportCmd.Flags().StringVar(&flagImportID, "id", "", "Level ID (default: from the file)")
	levelsValidateCmd.Flags().BoolVar(&flagShowSolution, "solution", false, "Print the shortest solution")

	levelsCmd.AddCommand(levelsExportCmd)
	levelsCmd.AddCommand(levelsImportCmd)
	levelsCmd.AddCommand(levelsValidateCmd)
	levelsCmd.AddCommand(levelsDeleteCmd)
}

func runLevelsExport(cmd *cobra.Command, args []string) {
	a := setup(io.Discard)
	defer a.close()

	info, ok := registry.Info(args[0])
	if !ok {
		fail("unknown level %q", args[0])
	}
	data, err := registry.Level(info.ID)
	if err != nil {
		fail("%v", err)
	}
	lvl := levels.Level{ID: info.ID, Name: info.Title, Order: info.Order, Data: data}

	if len(args) == 2 && flagExportFormat == "" {
		if err := levels.WriteFile(args[1], lvl); err != nil {
			fail("%v", err)
		}
		fmt.Printf("Wrote %s to %s\n", info.ID, args[1])
		return
	}

	ext := "." + strings.TrimPrefix(strings.ToLower(flagExportFormat), ".")
	if flagExportFormat == "" {
		ext = ".yaml"
	}
	body, err := levels.Encode(lvl, ext)
	if err != nil {
		fail("%v", err)
	}
	if len(args) == 2 {
		if err := os.WriteFile(args[1], body, 0o644); err != nil {
			fail("%v", err)
		}
		fmt.Printf("Wrote %s to %s\n", info.ID, args[1])
		return
	}
	os.Stdout.Write(body)
}

func runLevelsImport(cmd *cobra.Command, args []string) {
	a := setup(os.Stderr)
	defer a.close()

	if a.store == nil {
		fail("no database, cannot import")
	}
	lvl, err := levels.NewLoader(filepath.Dir(args[0])).LoadFile(args[0])
	if err != nil {
		fail("%v", err)
	}
	if flagImportID != "" {
		lvl.ID = flagImportID
	}
	if info, ok := registry.Info(lvl.ID); ok && info.Source == registry.SourceCampaign {
		fail("level %q is built in, pick another id with --id", lvl.ID)
	}

	if err := a.store.SaveLevel(lvl.ID, lvl.Name, lvl.Data); err != nil {
		fail("%v", err)
	}
	duality.AddLevels(registry.SourceCustom, []levels.Level{lvl})
	fmt.Printf("Imported %s (%s)\n", lvl.ID, lvl.Title())
	for _, p := range dcore.Lint(lvl.Data) {
		fmt.Printf("  warning: %s\n", p)
	}
}

func runLevelsDelete(cmd *cobra.Command, args []string) {
	a := setup(os.Stderr)
	defer a.close()

	if a.store == nil {
		fail("no database, nothing to delete")
	}
	if err := deleteLevel(a.store, args[0]); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Deleted %s\n", args[0])
}

// deleteLevel drops a custom level from the store and the catalog. Its runs
// go with it; built-in levels are refused.
func deleteLevel(store *storage.Store, id string) error {
	if info, ok := registry.Info(id); ok && info.Source == registry.SourceCampaign {
		return fmt.Errorf("level %q is built in and can not be deleted", id)
	}
	found, err := store.DeleteLevel(id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no imported level %q", id)
	}
	registry.Remove(id)
	return store.ClearRuns(id)
}

func runLevelsValidate(cmd *cobra.Command, args []string) {
	failed := 0
	for _, file := range args {
		if !validateFile(file) {
			failed++
		}
	}
	if failed > 0 {
		fail("%d of %d levels failed", failed, len(args))
	}
}

// validateFile loads, lints and solves one level file, printing a report.
func validateFile(file string) bool {
	lvl, err := levels.NewLoader(filepath.Dir(file)).LoadFile(file)
	if err != nil {
		fmt.Printf("FAIL %s: %v\n", file, err)
		return false
	}

	for _, p := range dcore.Lint(lvl.Data) {
		fmt.Printf("WARN %s: %s\n", file, p)
	}

	sol, err := dcore.Solve(lvl.Data, solveLimit)
	if err != nil {
		fmt.Printf("FAIL %s (%s): %v\n", file, lvl.ID, err)
		return false
	}
	fmt.Printf("OK   %s (%s): %d moves, %d steps\n", file, lvl.ID, sol.Moves, len(sol.Steps))
	if flagShowSolution {
		steps := make([]string, len(sol.Steps))
		for i, s := range sol.Steps {
			steps[i] = s.String()
		}
		fmt.Printf("     %s\n", strings.Join(steps, " "))
	}
	return true
}
