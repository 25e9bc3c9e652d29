package core_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
)

func TestSolveTutorial(t *testing.T) {
	l := core.InitialLevel()

	sol, err := core.Solve(l, 100000)
	require.NoError(t, err)
	assert.Equal(t, 28, sol.Moves)

	words := make([]string, len(sol.Steps))
	for i, s := range sol.Steps {
		words[i] = s.String()
	}
	end, _ := apply(t, l, core.NewState(l), strings.Join(words, " "))
	assert.True(t, end.Complete())
	assert.Equal(t, sol.Moves, end.Moves)
}

func TestSolveLevelTwoIsStuck(t *testing.T) {
	// The only target sits in the void cross and no token can enter void.
	_, err := core.Solve(core.LevelTwo(), 100000)
	requireCode(t, err, core.CodeNotSolvable)
}

func TestSolveNoTargets(t *testing.T) {
	_, err := core.Solve(core.NewLevel(4, 4, core.DarkTile), 1000)
	requireCode(t, err, core.CodeNotSolvable)
}

func TestSolveAlreadyComplete(t *testing.T) {
	l := core.NewLevel(4, 4, core.DarkTile)
	l.Targets = []core.Pos{core.P(0, 0)}

	sol, err := core.Solve(l, 1000)
	require.NoError(t, err)
	assert.Zero(t, sol.Moves)
	assert.Empty(t, sol.Steps)
}

func TestSolveGivesUp(t *testing.T) {
	l := core.NewLevel(20, 20, core.DarkTile)
	l.Terrain[19][19] = core.LightTile
	l.P2Start = core.P(19, 19)
	l.Targets = []core.Pos{core.P(19, 0), core.P(0, 19)}

	_, err := core.Solve(l, 10)
	assert.ErrorContains(t, err, "gave up")
}

func TestLint(t *testing.T) {
	assert.Empty(t, core.Lint(core.InitialLevel()))

	notes := core.Lint(core.LevelTwo())
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "void")

	l := core.NewLevel(4, 4, core.Wall)
	assert.Len(t, core.Lint(l), 3)
}
