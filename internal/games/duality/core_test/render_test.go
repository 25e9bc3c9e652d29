package core_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
)

func TestRenderASCIIInitial(t *testing.T) {
	l := core.InitialLevel()
	got := core.RenderASCII(l, core.NewState(l))

	want := strings.Join([]string{
		"Moves: 0 | Targets: 0/2 | Active: P1_White",
		"#######",
		"#WD##*#",
		"#LDLLD#",
		"#LD#LD#",
		"#LDDLD#",
		"#*##LB#",
		"#######",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderASCIIAfterCollect(t *testing.T) {
	l := core.InitialLevel()
	s, _ := apply(t, l, core.NewState(l), "right down switch left up up up left left left down down down")

	lines := strings.Split(core.RenderASCII(l, s), "\n")
	assert.Equal(t, "Moves: 12 | Targets: 1/2 | Active: P2_Black", lines[0])
	// P2 stands on the collected target, P1 waits at (2,2) as light floor.
	assert.Equal(t, "#B##LL#", lines[6])
	assert.Equal(t, "#LWLLD#", lines[3])
}

func TestParseASCIIRoundTrip(t *testing.T) {
	rows := []string{
		"# # # # # # #",
		"# 1 D # # d #",
		"# L D L L D #",
		"# L D # L D #",
		"# L D D L D #",
		"# l # # L 2 #",
		"# # # # # # #",
	}
	l, err := core.ParseASCII(rows)
	require.NoError(t, err)

	ref := core.InitialLevel()
	assert.Equal(t, ref.Terrain, l.Terrain)
	assert.Equal(t, ref.P1Start, l.P1Start)
	assert.Equal(t, ref.P2Start, l.P2Start)
	assert.ElementsMatch(t, ref.Targets, l.Targets)

	again, err := core.ParseASCII(core.FormatASCII(l))
	require.NoError(t, err)
	assert.True(t, l.Equal(again))
}

func TestParseASCIIErrors(t *testing.T) {
	_, err := core.ParseASCII(nil)
	requireCode(t, err, core.CodeBadSize)

	_, err = core.ParseASCII([]string{"###", "##"})
	requireCode(t, err, core.CodeBadTerrain)

	_, err = core.ParseASCII([]string{"#?#"})
	requireCode(t, err, core.CodeBadTerrain)

	_, err = core.ParseASCII([]string{"11"})
	requireCode(t, err, core.CodeMalformed)
}
