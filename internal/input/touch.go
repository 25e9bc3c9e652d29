package input

import (
	"math"
	"time"

	dcore "github.com/vovakirdan/tui-duality/internal/games/duality/core"
)

// Touch turns pointer gestures into commands: a swipe of at least SwipeMin
// moves along its dominant axis, and two taps within DoubleTap switch.
// Coordinates are in whatever unit the source uses (cells or pixels), as
// long as SwipeMin is given in the same unit.
type Touch struct {
	timing Timing

	down     bool
	startX   float64
	startY   float64
	lastTap  time.Time
	tapArmed bool
}

// NewTouch creates a touch adapter.
func NewTouch(t Timing) *Touch {
	return &Touch{timing: t}
}

// Begin records the start of a gesture.
func (t *Touch) Begin(x, y float64, _ time.Time) {
	t.down = true
	t.startX, t.startY = x, y
}

// End finishes a gesture and returns the resulting command, if any.
func (t *Touch) End(x, y float64, now time.Time) []Command {
	if !t.down {
		return nil
	}
	t.down = false

	dx, dy := x-t.startX, y-t.startY
	if math.Max(math.Abs(dx), math.Abs(dy)) >= t.timing.SwipeMin {
		t.tapArmed = false
		return []Command{Move(swipeDir(dx, dy))}
	}

	if t.tapArmed && now.Sub(t.lastTap) <= t.timing.DoubleTap {
		t.tapArmed = false
		return []Command{Switch()}
	}
	t.tapArmed = true
	t.lastTap = now
	return nil
}

// Cancel abandons the current gesture.
func (t *Touch) Cancel() {
	t.down = false
}

func swipeDir(dx, dy float64) dcore.Dir {
	if math.Abs(dx) >= math.Abs(dy) {
		if dx > 0 {
			return dcore.DirRight
		}
		return dcore.DirLeft
	}
	if dy > 0 {
		return dcore.DirDown
	}
	return dcore.DirUp
}
