package core_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
)

// tutorialSolution clears the tutorial level in 28 moves.
const tutorialSolution = "right down switch left up up up left left left down down down " +
	"up up up right right right down down switch down down right right right up up up"

// apply runs a space separated script of direction names and "switch",
// failing the test on the first rejected command.
func apply(t *testing.T, l *core.Level, s core.State, script string) (core.State, []core.Outcome) {
	t.Helper()
	var outs []core.Outcome
	for i, word := range strings.Fields(script) {
		var o core.Outcome
		if word == "switch" {
			o = core.Switch(s)
		} else {
			d, ok := core.ParseDir(word)
			require.Truef(t, ok, "bad direction %q", word)
			o = core.MoveDir(l, s, d)
		}
		require.Truef(t, o.Accepted, "command %d (%s) rejected: %s", i, word, o.Reason)
		outs = append(outs, o)
		s = o.State
	}
	return s, outs
}

// reachable enumerates every state reachable from the start of l through
// moves and switches.
func reachable(l *core.Level) []core.State {
	type key struct {
		p1, p2 core.Pos
		active core.Character
		mask   string
	}
	keyOf := func(s core.State) key {
		var sb strings.Builder
		for _, c := range s.Collected {
			if c {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		return key{s.P1, s.P2, s.Active, sb.String()}
	}

	start := core.NewState(l)
	seen := map[key]bool{keyOf(start): true}
	queue := []core.State{start}
	var out []core.State
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		out = append(out, s)

		next := []core.Outcome{core.Switch(s)}
		for _, d := range core.Dirs {
			next = append(next, core.MoveDir(l, s, d))
		}
		for _, o := range next {
			if !o.Accepted {
				continue
			}
			if k := keyOf(o.State); !seen[k] {
				seen[k] = true
				queue = append(queue, o.State)
			}
		}
	}
	return out
}
