package main

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-duality/internal/config"
	"github.com/vovakirdan/tui-duality/internal/core"
	"github.com/vovakirdan/tui-duality/internal/games/duality"
	"github.com/vovakirdan/tui-duality/internal/games/duality/levels"
	"github.com/vovakirdan/tui-duality/internal/i18n"
	"github.com/vovakirdan/tui-duality/internal/platform/tui"
	"github.com/vovakirdan/tui-duality/internal/registry"
	"github.com/vovakirdan/tui-duality/internal/storage"
)

// app is what every command starts from: configuration with flags applied,
// a logger, an optional store and the level catalog with custom levels.
type app struct {
	cfg   config.Config
	log   *log.Logger
	store *storage.Store
}

// setup loads configuration and custom levels. logOut receives log output;
// interactive commands pass io.Discard so logs do not draw over the UI.
func setup(logOut io.Writer) *app {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fail("%v", err)
	}
	if flagDBPath != "" {
		cfg.Storage.DB = flagDBPath
	}
	if flagFPS > 0 {
		cfg.UI.FPS = flagFPS
	}
	if flagLang != "" {
		cfg.UI.Lang = i18n.Code(flagLang)
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		fail("%v", err)
	}
	a := &app{
		cfg: cfg,
		log: log.NewWithOptions(logOut, log.Options{
			ReportTimestamp: true,
			Prefix:          "duality",
			Level:           level,
		}),
	}

	store, err := storage.Open(config.ExpandHome(cfg.Storage.DB))
	if err != nil {
		// Play continues without persistence.
		warn("could not open database: %v", err)
	} else {
		a.store = store
	}

	a.loadCustomLevels()
	return a
}

// loadCustomLevels adds levels from the configured directory and the
// database to the catalog. Database levels win over files with the same ID.
func (a *app) loadCustomLevels() {
	if dir := config.ExpandHome(a.cfg.Levels.Dir); dir != "" {
		lvls, err := levels.NewLoader(dir).LoadAll()
		if err != nil {
			a.log.Warn("cannot load level directory", "dir", dir, "error", err)
		}
		for _, err := range duality.AddLevels(registry.SourceFile, lvls) {
			a.log.Warn("level skipped", "error", err)
		}
	}

	if a.store == nil {
		return
	}
	stored, err := a.store.ListLevels()
	if err != nil {
		a.log.Warn("cannot list saved levels", "error", err)
		return
	}
	lvls := make([]levels.Level, 0, len(stored))
	for _, s := range stored {
		lvls = append(lvls, levels.Level{ID: s.ID, Name: s.Name, Data: s.Data})
	}
	for _, err := range duality.AddLevels(registry.SourceCustom, lvls) {
		a.log.Warn("level skipped", "error", err)
	}
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}

// options builds the terminal UI options for the local terminal.
func (a *app) options() tui.Options {
	keys, err := a.cfg.Input.Bindings()
	if err != nil {
		fail("%v", err)
	}

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	opts := tui.DefaultOptions()
	opts.Store = a.store
	opts.Keys = keys
	opts.Timing = a.cfg.Input.Timing()
	opts.Bell = a.cfg.UI.Bell
	opts.Config = core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: a.cfg.UI.FPS,
		Lang:     i18n.Code(a.cfg.UI.Lang),
	}
	if name := os.Getenv("USER"); name != "" {
		opts.Player = name
	}
	return opts
}
