// Package input turns physical input (keys, gamepad frames, pointer
// gestures) into game commands. Each adapter owns its own timing state;
// callers pass the current time so adapters stay deterministic.
package input

import (
	"fmt"
	"time"

	dcore "github.com/vovakirdan/tui-duality/internal/games/duality/core"
)

// Kind is the type of a command.
type Kind uint8

const (
	KindMove Kind = iota
	KindSwitch
	KindReset
	// KindStart dismisses the title screen. Adapters created with a start
	// gate emit it once before anything else.
	KindStart
)

// Command is an abstract request to the game.
type Command struct {
	Kind Kind
	Dir  dcore.Dir // valid for KindMove
}

// Move returns a move command.
func Move(d dcore.Dir) Command { return Command{Kind: KindMove, Dir: d} }

// Switch returns a switch command.
func Switch() Command { return Command{Kind: KindSwitch} }

// Reset returns a reset command.
func Reset() Command { return Command{Kind: KindReset} }

// Start returns a start command.
func Start() Command { return Command{Kind: KindStart} }

// String returns the command name as used in bindings and wire messages.
func (c Command) String() string {
	switch c.Kind {
	case KindMove:
		return c.Dir.String()
	case KindSwitch:
		return "switch"
	case KindReset:
		return "reset"
	case KindStart:
		return "start"
	default:
		return fmt.Sprintf("Command(%d)", c.Kind)
	}
}

// ParseCommand parses "up", "down", "left", "right", "switch", "reset" or
// "start".
func ParseCommand(s string) (Command, bool) {
	switch s {
	case "switch":
		return Switch(), true
	case "reset":
		return Reset(), true
	case "start":
		return Start(), true
	}
	if d, ok := dcore.ParseDir(s); ok {
		return Move(d), true
	}
	return Command{}, false
}

// Timing holds the rate limits shared by the adapters.
type Timing struct {
	MoveCooldown   time.Duration
	SwitchCooldown time.Duration
	AxisThreshold  float64
	DoubleTap      time.Duration
	SwipeMin       float64
}

// DefaultTiming returns the stock rate limits.
func DefaultTiming() Timing {
	return Timing{
		MoveCooldown:   280 * time.Millisecond,
		SwitchCooldown: 200 * time.Millisecond,
		AxisThreshold:  0.5,
		DoubleTap:      300 * time.Millisecond,
		SwipeMin:       1,
	}
}
