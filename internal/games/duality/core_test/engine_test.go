package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
)

func TestNewStateStartsOnLevelStarts(t *testing.T) {
	l := core.InitialLevel()
	s := core.NewState(l)

	assert.Equal(t, core.P(1, 1), s.P1)
	assert.Equal(t, core.P(5, 5), s.P2)
	assert.Equal(t, core.White, s.Active)
	assert.Equal(t, []bool{false, false}, s.Collected)
	assert.Zero(t, s.Moves)
	assert.False(t, s.Complete())
}

func TestNewStateCollectsTargetsUnderStarts(t *testing.T) {
	l := core.InitialLevel()
	l.Targets = append(l.Targets, l.P2Start)

	s := core.NewState(l)
	assert.Equal(t, []bool{false, false, true}, s.Collected)
	assert.Equal(t, 1, s.CollectedCount())
}

func TestMoveOntoDarkTile(t *testing.T) {
	l := core.InitialLevel()
	s := core.NewState(l)

	o := core.Move(l, s, 1, 0)
	require.True(t, o.Accepted)
	assert.Equal(t, core.P(2, 1), o.State.P1)
	assert.Equal(t, 1, o.State.Moves)
	assert.True(t, o.Has(core.EventMove))
	assert.False(t, o.Has(core.EventCollect))

	// Input state is untouched.
	assert.Equal(t, core.P(1, 1), s.P1)
	assert.Zero(t, s.Moves)

	// Moving up from (2,1) hits the border wall.
	o2 := core.Move(l, o.State, 0, -1)
	assert.False(t, o2.Accepted)
	assert.Equal(t, core.ReasonBlocked, o2.Reason)
	assert.Equal(t, o.State, o2.State)
	assert.Empty(t, o2.Events)
}

func TestMoveRejections(t *testing.T) {
	l := core.InitialLevel()
	start := core.NewState(l)

	tests := []struct {
		name   string
		state  core.State
		dx, dy int
		reason core.Reason
	}{
		{"diagonal", start, 1, 1, core.ReasonBadVector},
		{"zero vector", start, 0, 0, core.ReasonBadVector},
		{"long step", start, 2, 0, core.ReasonBadVector},
		{"wall above", start, 0, -1, core.ReasonBlocked},
		{"wall left", start, -1, 0, core.ReasonBlocked},
		{"light tile for P1", start, 0, 1, core.ReasonWrongTile},
		{
			"dark tile for P2",
			core.State{P1: core.P(1, 1), P2: core.P(5, 5), Active: core.Black, Collected: []bool{false, false}},
			0, -1,
			core.ReasonWrongTile,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := core.Move(l, tc.state, tc.dx, tc.dy)
			assert.False(t, o.Accepted)
			assert.Equal(t, tc.reason, o.Reason)
			assert.Equal(t, tc.state, o.State)
			assert.Empty(t, o.Events)
		})
	}
}

func TestMoveOutOfBounds(t *testing.T) {
	l := core.NewLevel(1, 1, core.DarkTile)
	s := core.NewState(l)

	for _, d := range core.Dirs {
		o := core.MoveDir(l, s, d)
		assert.False(t, o.Accepted)
		assert.Equal(t, core.ReasonOutOfBounds, o.Reason)
	}
}

func TestIllegalMoveIsIdempotent(t *testing.T) {
	l := core.InitialLevel()
	s := core.NewState(l)

	for i := 0; i < 5; i++ {
		o := core.Move(l, s, 0, -1)
		require.False(t, o.Accepted)
		s = o.State
	}
	assert.Equal(t, core.NewState(l), s)
}

func TestSwitchTogglesActive(t *testing.T) {
	l := core.InitialLevel()
	s := core.NewState(l)

	o := core.Switch(s)
	require.True(t, o.Accepted)
	assert.Equal(t, core.Black, o.State.Active)
	assert.True(t, o.Has(core.EventSwitch))

	o = core.Switch(o.State)
	require.True(t, o.Accepted)
	assert.Equal(t, core.White, o.State.Active)
	assert.Zero(t, o.State.Moves)
}

func TestSwitchRejectedWhileOverlapping(t *testing.T) {
	l := core.InitialLevel()
	s, _ := apply(t, l, core.NewState(l), "right down switch left up up up left left")
	require.True(t, s.Overlapping())
	require.Equal(t, core.Black, s.Active)

	o := core.Switch(s)
	assert.False(t, o.Accepted)
	assert.Equal(t, core.ReasonOverlap, o.Reason)
	assert.True(t, o.Has(core.EventError))
	assert.Equal(t, core.Black, o.State.Active)
	assert.Equal(t, s, o.State)
}

func TestPartnerBodyIsFloor(t *testing.T) {
	l := core.InitialLevel()
	// P1 waits at (2,2); P2 walks across it, although (2,2) is dark.
	s, _ := apply(t, l, core.NewState(l), "right down switch left up up up left")
	require.Equal(t, core.P(3, 2), s.P2)

	o := core.Move(l, s, -1, 0)
	require.True(t, o.Accepted)
	assert.Equal(t, core.P(2, 2), o.State.P2)
	assert.Equal(t, core.DarkTile, l.At(core.P(2, 2)))
}

func TestCollectBeforeWin(t *testing.T) {
	l := core.InitialLevel()
	s, outs := apply(t, l, core.NewState(l), "right down switch left up up up left left left down down down")

	last := outs[len(outs)-1]
	assert.True(t, last.Has(core.EventCollect))
	assert.False(t, last.Has(core.EventWin))
	assert.Equal(t, []bool{true, false}, s.Collected)
	assert.False(t, s.Complete())
}

func TestWinFiresOnce(t *testing.T) {
	l := core.InitialLevel()
	s, outs := apply(t, l, core.NewState(l), tutorialSolution)

	wins, collects := 0, 0
	for _, o := range outs {
		for _, e := range o.Events {
			switch e.Kind {
			case core.EventWin:
				wins++
				assert.Equal(t, 1, e.Target)
			case core.EventCollect:
				collects++
				assert.Equal(t, 0, e.Target)
			}
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, collects)
	assert.True(t, s.Complete())
	assert.Equal(t, 28, s.Moves)

	// Moves stay computable after the win but never fire it again.
	back := core.Move(l, s, 0, 1)
	require.True(t, back.Accepted)
	assert.False(t, back.Has(core.EventWin))
	again := core.Move(l, back.State, 0, -1)
	require.True(t, again.Accepted)
	assert.False(t, again.Has(core.EventWin))
	assert.False(t, again.Has(core.EventCollect))
}

func TestCollectionIsMonotonic(t *testing.T) {
	l := core.InitialLevel()
	_, outs := apply(t, l, core.NewState(l), tutorialSolution)

	prev := core.NewState(l).Collected
	for _, o := range outs {
		for i := range prev {
			if prev[i] {
				assert.True(t, o.State.Collected[i], "target %d uncollected", i)
			}
		}
		prev = o.State.Collected
	}
}

func TestResetRestoresStart(t *testing.T) {
	l := core.InitialLevel()
	s, _ := apply(t, l, core.NewState(l), "right down switch left")
	require.NotEqual(t, core.NewState(l), s)

	r := core.Reset(l)
	assert.Equal(t, core.NewState(l), r)
	assert.Equal(t, core.White, r.Active)
	assert.Zero(t, r.Moves)
}

func TestZeroTargetLevelNeverWins(t *testing.T) {
	l := core.NewLevel(4, 1, core.DarkTile)
	s := core.NewState(l)

	o := core.Move(l, s, 1, 0)
	require.True(t, o.Accepted)
	assert.False(t, o.Has(core.EventWin))
	assert.False(t, o.State.Complete())
}
