package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-duality/internal/core"
	"github.com/vovakirdan/tui-duality/internal/games/duality"
	dcore "github.com/vovakirdan/tui-duality/internal/games/duality/core"
	"github.com/vovakirdan/tui-duality/internal/input"
	"github.com/vovakirdan/tui-duality/internal/registry"
	"github.com/vovakirdan/tui-duality/internal/storage"
)

const tutorialSolution = "right down switch left up up up left left left down down down up up up right right right down down switch down down right right right up up up"

var wordKeys = map[string]string{
	"up": "w", "down": "s", "left": "a", "right": "d", "switch": " ",
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// testOptions turns off the keyboard rate limits so every key press counts.
func testOptions(t *testing.T, store *storage.Store) Options {
	t.Helper()
	opts := DefaultOptions()
	opts.Timing.MoveCooldown = 0
	opts.Timing.SwitchCooldown = 0
	opts.Store = store
	opts.Player = "tester"
	opts.ExportDir = t.TempDir()
	return opts
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func press(t *testing.T, m tea.Model, keys ...string) tea.Model {
	t.Helper()
	for _, k := range keys {
		m, _ = m.Update(keyMsg(k))
	}
	return m
}

func tick(m tea.Model) tea.Model {
	m, _ = m.Update(TickMsg(time.Now()))
	return m
}

func TestRenderScreenPlainAndStyled(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.DrawText(0, 0, "plain", core.ColorDefault)
	s.SetCell(0, 1, core.Cell{Rune: 'X', Fg: core.ColorRed, Bg: core.ColorWhite})

	out := RenderScreen(s)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "plain ", lines[0])
	assert.Contains(t, lines[1], "X")
}

func TestKeyMapperGlobalsAndBindings(t *testing.T) {
	km := NewKeyMapper(input.MustBindings(input.DefaultKeys), input.Timing{})
	now := time.Now()

	for key, want := range map[string]core.Action{"q": core.ActionQuit, "esc": core.ActionBack, "p": core.ActionPause} {
		a, cmds := km.MapKey(keyMsg(key), now)
		assert.Equal(t, want, a, key)
		assert.Empty(t, cmds, key)
	}

	frame := core.NewInputFrame()
	assert.Equal(t, core.ActionNone, km.MapKeyToFrame(keyMsg("d"), now, &frame))
	assert.Equal(t, core.ActionNone, km.MapKeyToFrame(keyMsg("r"), now, &frame))
	assert.Equal(t, core.ActionNone, km.MapKeyToFrame(keyMsg("x"), now, &frame))
	assert.Equal(t, []core.Action{core.ActionRight, core.ActionRestart}, frame.Order)
}

func TestKeyMapperRateLimitsRepeats(t *testing.T) {
	km := NewKeyMapper(input.MustBindings(input.DefaultKeys), input.DefaultTiming())
	start := time.Now()

	_, first := km.MapKey(keyMsg("up"), start)
	_, repeat := km.MapKey(keyMsg("up"), start.Add(100*time.Millisecond))
	_, later := km.MapKey(keyMsg("up"), start.Add(400*time.Millisecond))

	assert.Len(t, first, 1)
	assert.Empty(t, repeat)
	assert.Len(t, later, 1)
}

func TestCommandAction(t *testing.T) {
	assert.Equal(t, core.ActionSwitch, CommandAction(input.Switch()))
	assert.Equal(t, core.ActionRestart, CommandAction(input.Reset()))
	assert.Equal(t, core.ActionConfirm, CommandAction(input.Start()))
	assert.Equal(t, core.ActionUp, CommandAction(input.Move(dcore.DirUp)))
	assert.Equal(t, core.ActionLeft, CommandAction(input.Move(dcore.DirLeft)))
}

func TestGameModelClearsTutorialAndSavesRun(t *testing.T) {
	store := openStore(t)
	game, err := registry.Create("first-light")
	require.NoError(t, err)

	var m tea.Model = NewGameModel(game, testOptions(t, store), false)
	for _, word := range strings.Fields(tutorialSolution) {
		m = press(t, m, wordKeys[word])
		m = tick(m)
	}

	gm := m.(GameModel)
	assert.True(t, gm.State().Won)
	assert.Equal(t, 28, gm.State().Moves)

	runs, err := store.BestRuns("first-light", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 28, runs[0].Moves)
	assert.Equal(t, "tester", runs[0].Player)

	// More ticks after the clear do not save again.
	m = tick(tick(m))
	runs, err = store.BestRuns("first-light", 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestGameModelBackAndQuit(t *testing.T) {
	game, err := registry.Create("first-light")
	require.NoError(t, err)

	m := press(t, NewGameModel(game, testOptions(t, nil), false), "esc")
	assert.True(t, m.(GameModel).BackToMenu())

	standalone := press(t, NewGameModel(game, testOptions(t, nil), true), "esc")
	assert.True(t, standalone.(GameModel).IsQuitting())
}

func TestGameModelSwipe(t *testing.T) {
	game, err := registry.Create("first-light")
	require.NoError(t, err)

	var m tea.Model = NewGameModel(game, testOptions(t, nil), false)
	m, _ = m.Update(tea.MouseMsg{X: 10, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	m, _ = m.Update(tea.MouseMsg{X: 14, Y: 5, Action: tea.MouseActionRelease})
	m = tick(m)

	assert.Equal(t, 1, m.(GameModel).State().Moves)
}

func TestGameModelResizeKeepsProgress(t *testing.T) {
	game, err := registry.Create("first-light")
	require.NoError(t, err)

	m := tick(press(t, NewGameModel(game, testOptions(t, nil), false), "d"))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = tick(m)

	assert.Equal(t, 1, m.(GameModel).State().Moves)
	assert.Contains(t, m.View(), "DUALITY")
}

func TestBellCmd(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Bell: true, Out: &buf}

	assert.Nil(t, bellCmd(opts, []string{duality.CueMove}))
	assert.Nil(t, bellCmd(Options{Out: &buf}, []string{duality.CueWin}))

	cmd := bellCmd(opts, []string{duality.CueMove, duality.CueCollect})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, "\a", buf.String())
}

func TestMenuNavigationAndChoices(t *testing.T) {
	opts := testOptions(t, nil)
	var m tea.Model = NewMenuModel(opts)

	menu := m.(MenuModel)
	require.NotNil(t, menu.Selected())
	assert.Equal(t, "first-light", menu.Selected().LevelID)

	m = press(t, m, "down")
	assert.Equal(t, "void-cross", m.(MenuModel).Selected().LevelID)

	assert.Equal(t, ChoiceNone, press(t, m, "c").(MenuModel).Choice(), "co-op needs a coordinator")
	assert.Equal(t, ChoicePlay, press(t, m, "enter").(MenuModel).Choice())
	assert.Equal(t, ChoiceScoreboard, press(t, m, "tab").(MenuModel).Choice())
	assert.Equal(t, ChoiceEdit, press(t, m, "e").(MenuModel).Choice())
	assert.True(t, press(t, m, "q").(MenuModel).IsQuitting())
}

func TestMenuShowsBestMoves(t *testing.T) {
	store := openStore(t)
	_, err := store.SaveRun("first-light", 31, "a")
	require.NoError(t, err)
	_, err = store.SaveRun("first-light", 28, "b")
	require.NoError(t, err)

	m := NewMenuModel(testOptions(t, store))
	assert.Equal(t, 28, m.Selected().Best)
}

func TestMenuLanguageToggle(t *testing.T) {
	m := press(t, NewMenuModel(testOptions(t, nil)), "l").(MenuModel)
	assert.Equal(t, "zh", m.Options().Config.Lang)
	assert.Contains(t, m.View(), "双")
}

func TestScoreboardListsRuns(t *testing.T) {
	store := openStore(t)
	_, err := store.SaveRun("bridge", 20, "slow")
	require.NoError(t, err)
	_, err = store.SaveRun("bridge", 12, "fast")
	require.NoError(t, err)

	m := NewScoreboardModel(store, "en", 100, 30, "bridge")
	require.Len(t, m.runs, 2)
	assert.Equal(t, "fast", m.runs[0].Player)
	assert.Contains(t, m.View(), "fast")
	assert.Contains(t, m.View(), "CLEARS 2  BEST 12  AVG 16.0")

	next := press(t, m, "tab").(ScoreboardModel)
	assert.Empty(t, next.runs)

	back := press(t, m, "esc").(ScoreboardModel)
	assert.True(t, back.IsGoingBack())
}

func TestEditorPaintsAndReportsErrors(t *testing.T) {
	var m tea.Model = NewEditorModel("mine", "Mine", nil, testOptions(t, nil))

	// Brush 1 is wall; paint the top-left floor tile.
	m = press(t, m, "right", "down", "1", " ")
	em := m.(EditorModel)
	assert.Equal(t, dcore.Wall, em.Level().At(dcore.P(1, 1)))
	assert.True(t, em.dirty)

	// P2 must start on a light tile; (1,1) is now a wall.
	m = press(t, m, "6", " ")
	em = m.(EditorModel)
	assert.NotEmpty(t, em.flash)
	assert.Equal(t, dcore.P(6, 1), em.Level().P2Start)
}

func TestEditorRefusedEditRingsBell(t *testing.T) {
	var buf bytes.Buffer
	opts := testOptions(t, nil)
	opts.Bell = true
	opts.Out = &buf

	// Brush 6 is the P2 start, which needs a light tile; (0,0) is a wall.
	var m tea.Model = press(t, NewEditorModel("mine", "", nil, opts), "6")
	before := m.(EditorModel).Level().Clone()
	m, cmd := m.Update(keyMsg(" "))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, "\a", buf.String())
	assert.NotEmpty(t, m.(EditorModel).flash)
	assert.True(t, before.Equal(m.(EditorModel).Level()))

	// An accepted edit stays quiet.
	buf.Reset()
	m = press(t, m, "right", "down", "1")
	_, cmd = m.Update(keyMsg(" "))
	assert.Nil(t, cmd)
	assert.Empty(t, buf.String())
}

func TestEditorMousePaints(t *testing.T) {
	em := NewEditorModel("mine", "", nil, testOptions(t, nil))
	r := em.boardRect(em.screen)
	click := func(m tea.Model, x, y int, action tea.MouseAction) tea.Model {
		m, _ = m.Update(tea.MouseMsg{X: r.X + x*2, Y: r.Y + y, Button: tea.MouseButtonLeft, Action: action})
		return m
	}

	// The default brush is wall.
	var m tea.Model = em
	m = click(m, 2, 2, tea.MouseActionPress)
	m = click(m, 3, 2, tea.MouseActionMotion)
	em = m.(EditorModel)
	assert.Equal(t, dcore.Wall, em.Level().At(dcore.P(2, 2)))
	assert.Equal(t, dcore.Wall, em.Level().At(dcore.P(3, 2)))
	assert.Equal(t, dcore.P(3, 2), em.cursor)

	// Clicks beside the board change nothing.
	before := em.Level().Clone()
	m, _ = m.Update(tea.MouseMsg{X: r.X - 1, Y: r.Y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.True(t, before.Equal(m.(EditorModel).Level()))
}

func TestEditorResizeClampsCursor(t *testing.T) {
	var m tea.Model = NewEditorModel("mine", "", nil, testOptions(t, nil))
	for i := 0; i < 10; i++ {
		m = press(t, m, "right")
	}
	m = press(t, m, "-", "-", "-", "-", "-")

	em := m.(EditorModel)
	assert.Equal(t, dcore.MinEditSize, em.Level().Width)
	assert.Equal(t, dcore.MinEditSize-1, em.cursor.X)
}

func TestEditorCheckSaveAndExport(t *testing.T) {
	store := openStore(t)
	opts := testOptions(t, store)
	var m tea.Model = NewEditorModel("tut-copy", "Tutorial copy", dcore.InitialLevel(), opts)

	m = press(t, m, "v")
	assert.Contains(t, m.(EditorModel).flash, "28")

	m = press(t, m, "ctrl+s")
	assert.Equal(t, "SAVED", m.(EditorModel).flash)
	stored, err := store.LoadLevel("tut-copy")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Data.Equal(dcore.InitialLevel()))
	assert.True(t, registry.Exists("tut-copy"))
	t.Cleanup(func() { registry.Remove("tut-copy") })

	m = press(t, m, "ctrl+e")
	_, err = os.Stat(filepath.Join(opts.ExportDir, "tut-copy.yaml"))
	assert.NoError(t, err)
}

func TestEditorTestPlay(t *testing.T) {
	var m tea.Model = NewEditorModel("tut", "", dcore.InitialLevel(), testOptions(t, nil))

	m = press(t, m, "t")
	require.NotNil(t, m.(EditorModel).testing)
	assert.Contains(t, m.View(), "MOVES")

	m = press(t, m, "esc")
	assert.Nil(t, m.(EditorModel).testing)
	assert.False(t, m.(EditorModel).BackToMenu())
}

func TestSessionFlow(t *testing.T) {
	var m tea.Model = NewSessionModel(testOptions(t, nil))

	m = press(t, m, "enter")
	sm := m.(SessionModel)
	assert.Equal(t, screenGame, sm.current)
	require.NotNil(t, sm.game)

	m = press(t, m, "esc")
	assert.Equal(t, screenMenu, m.(SessionModel).current)

	m = press(t, m, "tab")
	assert.Equal(t, screenScoreboard, m.(SessionModel).current)
	m = press(t, m, "esc")
	assert.Equal(t, screenMenu, m.(SessionModel).current)

	m = press(t, m, "n")
	assert.Equal(t, screenEditor, m.(SessionModel).current)
	m = press(t, m, "esc")
	assert.Equal(t, screenMenu, m.(SessionModel).current)

	m, cmd := m.Update(keyMsg("q"))
	assert.True(t, m.(SessionModel).quitting)
	assert.NotNil(t, cmd)
}

func TestSessionLang(t *testing.T) {
	assert.Equal(t, "zh", sessionLang([]string{"TERM=xterm", "LANG=zh_CN.UTF-8"}, "en"))
	assert.Equal(t, "en", sessionLang([]string{"LANG=en_US.UTF-8"}, "zh"))
	assert.Equal(t, "zh", sessionLang(nil, "zh"))
}
