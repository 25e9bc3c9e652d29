// Package registry is the catalog of playable levels and the place where
// the game runtime plugs in. Built-in levels register themselves in init()
// functions; custom levels from disk or the database are added at startup,
// so the platform can list and start levels without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-duality/internal/core"
	dcore "github.com/vovakirdan/tui-duality/internal/games/duality/core"
)

// Game is the interface the platform loop drives.
// Games contain pure logic with no external dependencies (especially no
// Bubble Tea). The platform handles input mapping, timing, and rendering.
type Game interface {
	// ID returns the level identifier. Used for CLI commands and run storage.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset initializes or resets the game state.
	Reset(cfg core.RuntimeConfig)

	// Step applies one frame of input.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current game state into the provided screen buffer.
	// The screen is pre-cleared before this call.
	Render(dst *core.Screen)

	// State returns the current game state.
	State() core.GameState
}

// Source tells where a level came from.
type Source string

const (
	SourceCampaign Source = "campaign"
	SourceFile     Source = "file"
	SourceCustom   Source = "custom"
)

// LevelInfo contains metadata about a registered level.
type LevelInfo struct {
	ID     string
	Title  string
	Order  int
	Source Source
}

// LevelFactory returns a fresh copy of a level's data.
type LevelFactory func() *dcore.Level

// GameFactory builds a game for a level.
type GameFactory func(info LevelInfo, level *dcore.Level) Game

var (
	factories = make(map[string]LevelFactory)
	infos     = make(map[string]LevelInfo)
	runtime   GameFactory
	mu        sync.RWMutex
)

// Register adds a level to the catalog.
// Typically called from an init() function.
// Panics if a level with the same ID is already registered.
func Register(info LevelInfo, f LevelFactory) {
	if err := Add(info, f); err != nil {
		panic(err)
	}
}

// Add adds a level to the catalog, failing on a duplicate ID.
func Add(info LevelInfo, f LevelFactory) error {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[info.ID]; exists {
		return fmt.Errorf("registry: level %q already registered", info.ID)
	}
	if info.Title == "" {
		info.Title = info.ID
	}
	factories[info.ID] = f
	infos[info.ID] = info
	return nil
}

// Replace adds or overwrites a level. Campaign levels cannot be replaced.
func Replace(info LevelInfo, f LevelFactory) error {
	mu.Lock()
	if old, ok := infos[info.ID]; ok && old.Source == SourceCampaign {
		mu.Unlock()
		return fmt.Errorf("registry: level %q is built in", info.ID)
	}
	delete(factories, info.ID)
	delete(infos, info.ID)
	mu.Unlock()
	return Add(info, f)
}

// Remove deletes a non-campaign level. It reports whether one was removed.
func Remove(id string) bool {
	mu.Lock()
	defer mu.Unlock()

	info, ok := infos[id]
	if !ok || info.Source == SourceCampaign {
		return false
	}
	delete(factories, id)
	delete(infos, id)
	return true
}

// RegisterGame installs the constructor used by Create.
// Panics if one is already installed.
func RegisterGame(f GameFactory) {
	mu.Lock()
	defer mu.Unlock()

	if runtime != nil {
		panic("registry: game runtime already registered")
	}
	runtime = f
}

// List returns all registered levels: campaign levels by order first,
// then the rest sorted by ID.
func List() []LevelInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]LevelInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if (a.Source == SourceCampaign) != (b.Source == SourceCampaign) {
			return a.Source == SourceCampaign
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})

	return result
}

// Info returns the metadata of a level.
func Info(id string) (LevelInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()

	info, ok := infos[id]
	return info, ok
}

// Level returns a fresh copy of a level's data.
func Level(id string) (*dcore.Level, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown level %q", id)
	}
	return f(), nil
}

// Create instantiates a game on the level with the given ID.
// Returns an error if the level is not registered.
func Create(id string) (Game, error) {
	mu.RLock()
	f, ok := factories[id]
	info := infos[id]
	rt := runtime
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown level %q", id)
	}
	if rt == nil {
		return nil, fmt.Errorf("registry: no game runtime registered")
	}
	return rt(info, f()), nil
}

// Exists checks if a level with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}

// Next returns the level after id in List order, passing over levels that
// dcore.Lint flags since those can not be cleared as intended.
func Next(id string) (LevelInfo, bool) {
	all := List()
	for i, info := range all {
		if info.ID != id {
			continue
		}
		for _, next := range all[i+1:] {
			if playable(next.ID) {
				return next, true
			}
		}
		break
	}
	return LevelInfo{}, false
}

func playable(id string) bool {
	l, err := Level(id)
	return err == nil && len(dcore.Lint(l)) == 0
}
