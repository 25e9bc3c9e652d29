package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-duality/internal/core"
	dcore "github.com/vovakirdan/tui-duality/internal/games/duality/core"
	"github.com/vovakirdan/tui-duality/internal/input"
)

// KeyMapper translates Bubble Tea key messages to game actions.
// Quit, back and pause are fixed; everything else goes through the
// configured bindings and the keyboard adapter's rate limits.
type KeyMapper struct {
	keyboard *input.Keyboard
}

// NewKeyMapper creates a key mapper over the given bindings.
func NewKeyMapper(b input.Bindings, t input.Timing) *KeyMapper {
	return &KeyMapper{keyboard: input.NewKeyboard(b, t)}
}

// globalAction returns the fixed action of a key, or ActionNone.
func globalAction(key string) core.Action {
	switch key {
	case "ctrl+c", "q", "Q":
		return core.ActionQuit
	case "esc", "b", "B":
		return core.ActionBack
	case "p", "P":
		return core.ActionPause
	}
	return core.ActionNone
}

// MapKey translates a key message at time now. It returns either a
// global action (quit, back, pause) or the commands produced by the
// bound key, which may be none while a repeat is rate limited.
func (km *KeyMapper) MapKey(msg tea.KeyMsg, now time.Time) (core.Action, []input.Command) {
	key := msg.String()
	if a := globalAction(key); a != core.ActionNone {
		return a, nil
	}
	return core.ActionNone, km.keyboard.Press(key, now)
}

// MapKeyToFrame adds the actions of a key message to an input frame.
// Quit and back are returned to the caller instead of being queued.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, now time.Time, frame *core.InputFrame) core.Action {
	global, cmds := km.MapKey(msg, now)
	switch global {
	case core.ActionQuit, core.ActionBack:
		return global
	case core.ActionPause:
		frame.Set(core.ActionPause)
		return core.ActionNone
	}
	for _, c := range cmds {
		frame.Set(CommandAction(c))
	}
	return core.ActionNone
}

// Tick forwards held-key repeats from the keyboard adapter.
func (km *KeyMapper) Tick(now time.Time, frame *core.InputFrame) {
	for _, c := range km.keyboard.Tick(now) {
		frame.Set(CommandAction(c))
	}
}

// CommandAction maps a device-independent command to a game action.
func CommandAction(c input.Command) core.Action {
	switch c.Kind {
	case input.KindSwitch:
		return core.ActionSwitch
	case input.KindReset:
		return core.ActionRestart
	case input.KindStart:
		return core.ActionConfirm
	}
	switch c.Dir {
	case dcore.DirUp:
		return core.ActionUp
	case dcore.DirDown:
		return core.ActionDown
	case dcore.DirLeft:
		return core.ActionLeft
	default:
		return core.ActionRight
	}
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
	MenuActionScoreboard
	MenuActionEdit
	MenuActionNew
	MenuActionCoop
	MenuActionLanguage
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionScoreboard
	case "e":
		return MenuActionEdit
	case "n":
		return MenuActionNew
	case "c":
		return MenuActionCoop
	case "l":
		return MenuActionLanguage
	}
	return MenuActionNone
}
