package input

import "time"

// Keyboard turns key events into commands.
//
// With release events (browser clients) a held direction moves at once and
// then repeats every MoveCooldown from Tick until it is released, and a
// held switch key switches only once. Terminals report no releases, only
// auto-repeated presses; in that mode a repeated press of the same
// direction is rate limited to one move per MoveCooldown.
type Keyboard struct {
	bindings Bindings
	timing   Timing
	releases bool
	gated    bool

	dir        *Command
	lastMove   time.Time
	switchHeld bool
	lastSwitch time.Time
}

// KeyboardOption configures a Keyboard.
type KeyboardOption func(*Keyboard)

// WithReleaseEvents declares that the source reports key releases.
func WithReleaseEvents() KeyboardOption {
	return func(k *Keyboard) { k.releases = true }
}

// WithStartGate makes the first bound key press emit Start instead of its
// own command.
func WithStartGate() KeyboardOption {
	return func(k *Keyboard) { k.gated = true }
}

// NewKeyboard creates a keyboard adapter.
func NewKeyboard(b Bindings, t Timing, opts ...KeyboardOption) *Keyboard {
	k := &Keyboard{bindings: b, timing: t}
	for _, o := range opts {
		o(k)
	}
	return k
}

// Press handles a key press. Unknown keys are ignored.
func (k *Keyboard) Press(key string, now time.Time) []Command {
	cmd, ok := k.bindings.Lookup(key)
	if !ok {
		return nil
	}

	if k.gated {
		k.gated = false
		if cmd.Kind == KindSwitch {
			k.switchHeld = true
			k.lastSwitch = now
		}
		return []Command{Start()}
	}

	switch cmd.Kind {
	case KindMove:
		return k.pressDir(cmd, now)
	case KindSwitch:
		held := k.switchHeld && k.releases
		if held || now.Sub(k.lastSwitch) < k.timing.SwitchCooldown {
			return nil
		}
		k.switchHeld = true
		k.lastSwitch = now
		return []Command{cmd}
	default:
		return []Command{cmd}
	}
}

func (k *Keyboard) pressDir(cmd Command, now time.Time) []Command {
	same := k.dir != nil && k.dir.Dir == cmd.Dir
	if same && (k.releases || now.Sub(k.lastMove) < k.timing.MoveCooldown) {
		return nil
	}
	c := cmd
	k.dir = &c
	k.lastMove = now
	return []Command{cmd}
}

// Release handles a key release.
func (k *Keyboard) Release(key string, _ time.Time) {
	cmd, ok := k.bindings.Lookup(key)
	if !ok {
		return
	}
	switch cmd.Kind {
	case KindSwitch:
		k.switchHeld = false
	case KindMove:
		if k.dir != nil && k.dir.Dir == cmd.Dir {
			k.dir = nil
		}
	}
}

// Tick emits the repeat move for a held direction. It does nothing for
// sources without release events.
func (k *Keyboard) Tick(now time.Time) []Command {
	if !k.releases || k.dir == nil {
		return nil
	}
	if now.Sub(k.lastMove) < k.timing.MoveCooldown {
		return nil
	}
	k.lastMove = now
	return []Command{*k.dir}
}

// ReleaseAll forgets every held key, for example when focus is lost.
func (k *Keyboard) ReleaseAll() {
	k.dir = nil
	k.switchHeld = false
}
