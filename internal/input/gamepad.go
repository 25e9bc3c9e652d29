package input

import (
	"time"

	dcore "github.com/vovakirdan/tui-duality/internal/games/duality/core"
)

// Standard gamepad layout indices.
const (
	ButtonA      = 0
	ButtonB      = 1
	ButtonX      = 2
	ButtonY      = 3
	ButtonSelect = 8
	ButtonStart  = 9
	ButtonUp     = 12
	ButtonDown   = 13
	ButtonLeft   = 14
	ButtonRight  = 15

	AxisLeftX = 0
	AxisLeftY = 1
)

// GamepadFrame is one poll of a controller in the standard layout.
// Missing buttons read as released and missing axes as centred.
type GamepadFrame struct {
	Buttons []bool    `json:"buttons"`
	Axes    []float64 `json:"axes"`
}

func (f GamepadFrame) button(i int) bool {
	return i < len(f.Buttons) && f.Buttons[i]
}

func (f GamepadFrame) axis(i int) float64 {
	if i < len(f.Axes) {
		return f.Axes[i]
	}
	return 0
}

// Gamepad turns polled controller frames into commands.
//
// Any face button switches on its rising edge; select or start resets.
// The left stick (beyond the axis threshold) or the d-pad moves: a new
// direction moves at once, a held one repeats every MoveCooldown.
type Gamepad struct {
	timing Timing
	gated  bool

	prevSwitch   bool
	prevReset    bool
	prevStart    bool
	suppress     bool
	lastDir      *dcore.Dir
	lastMoveTime time.Time
}

// NewGamepad creates a gamepad adapter. With startGate set, nothing but a
// press of the A button is accepted until the game is started, and the
// same press does not also switch.
func NewGamepad(t Timing, startGate bool) *Gamepad {
	return &Gamepad{timing: t, gated: startGate}
}

// Poll processes one frame.
func (g *Gamepad) Poll(f GamepadFrame, now time.Time) []Command {
	btnStart := f.button(ButtonA)
	if g.gated {
		var out []Command
		if btnStart && !g.prevStart {
			g.gated = false
			g.suppress = true
			out = append(out, Start())
		}
		g.prevStart = btnStart
		g.prevSwitch, g.prevReset = false, false
		return out
	}
	g.prevStart = btnStart

	var out []Command
	btnSwitch := f.button(ButtonA) || f.button(ButtonB) || f.button(ButtonX) || f.button(ButtonY)
	btnReset := f.button(ButtonSelect) || f.button(ButtonStart)

	if g.suppress {
		if !btnSwitch {
			g.suppress = false
		}
	} else if btnSwitch && !g.prevSwitch {
		out = append(out, Switch())
	}
	if btnReset && !g.prevReset {
		out = append(out, Reset())
	}

	if d, ok := g.direction(f); ok {
		continuous := g.lastDir != nil && *g.lastDir == d
		if !continuous || now.Sub(g.lastMoveTime) >= g.timing.MoveCooldown {
			out = append(out, Move(d))
			g.lastMoveTime = now
		}
		g.lastDir = &d
	} else {
		g.lastDir = nil
	}

	g.prevSwitch, g.prevReset = btnSwitch, btnReset
	return out
}

// direction resolves stick and d-pad with vertical taking precedence.
func (g *Gamepad) direction(f GamepadFrame) (dcore.Dir, bool) {
	th := g.timing.AxisThreshold
	x, y := f.axis(AxisLeftX), f.axis(AxisLeftY)
	switch {
	case y < -th || f.button(ButtonUp):
		return dcore.DirUp, true
	case y > th || f.button(ButtonDown):
		return dcore.DirDown, true
	case x < -th || f.button(ButtonLeft):
		return dcore.DirLeft, true
	case x > th || f.button(ButtonRight):
		return dcore.DirRight, true
	default:
		return 0, false
	}
}
