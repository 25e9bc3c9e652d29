package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-duality/internal/core"
	"github.com/vovakirdan/tui-duality/internal/games/duality"
	dcore "github.com/vovakirdan/tui-duality/internal/games/duality/core"
	"github.com/vovakirdan/tui-duality/internal/games/duality/levels"
	"github.com/vovakirdan/tui-duality/internal/i18n"
	"github.com/vovakirdan/tui-duality/internal/registry"
)

// solveLimit bounds the state search behind the editor's check command.
const solveLimit = 200000

// EditorModel edits one level: a cursor, a brush palette, resizing,
// a solvability check, test play, and saving to the database or a file.
type EditorModel struct {
	id     string
	name   string
	level  *dcore.Level
	cursor dcore.Pos
	tool   int

	opts   Options
	text   *i18n.Text
	screen *core.Screen
	flash  string
	dirty  bool

	// exportPath is where ctrl+e writes the level; defaults to
	// <ExportDir>/<id>.yaml.
	exportPath string

	testing *GameModel

	standalone bool
	backToMenu bool
	quitting   bool
}

// NewEditorModel opens the editor on a copy of level. A nil level starts
// from a blank 8x6 board.
func NewEditorModel(id, name string, level *dcore.Level, opts Options) EditorModel {
	if level == nil {
		level = blankLevel()
	}
	if id == "" {
		id = "custom"
	}
	return EditorModel{
		id:     id,
		name:   name,
		level:  level.Clone(),
		opts:   opts,
		text:   i18n.For(opts.Config.Lang),
		screen: core.NewScreen(opts.Config.ScreenW, opts.Config.ScreenH),
	}
}

// blankLevel is a walled 8x6 board with both starts placed.
func blankLevel() *dcore.Level {
	l := dcore.NewLevel(8, 6, dcore.Wall)
	for y := 1; y < 5; y++ {
		for x := 1; x < 7; x++ {
			t := dcore.LightTile
			if x < 4 {
				t = dcore.DarkTile
			}
			l.Terrain[y][x] = t
		}
	}
	l.P1Start = dcore.P(1, 1)
	l.P2Start = dcore.P(6, 1)
	return l
}

// WithExportPath sets the file ctrl+e writes to.
func (m EditorModel) WithExportPath(path string) EditorModel {
	m.exportPath = path
	return m
}

// Init initializes the editor.
func (m EditorModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the editor and its test session.
func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Config.ScreenW = wsm.Width
		m.opts.Config.ScreenH = wsm.Height
		m.screen.Resize(wsm.Width, wsm.Height)
	}

	if m.testing != nil {
		next, cmd := m.testing.Update(msg)
		gm := next.(GameModel)
		switch {
		case gm.IsQuitting():
			m.quitting = true
			return m, tea.Quit
		case gm.BackToMenu():
			m.testing = nil
			m.flash = m.text.Back
			return m, nil
		}
		m.testing = &gm
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

// handleMouse paints the clicked tile. Dragging with the button held paints
// each tile the pointer enters.
func (m EditorModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if msg.Action != tea.MouseActionPress && msg.Action != tea.MouseActionMotion {
		return m, nil
	}
	r := m.boardRect(m.screen)
	if !r.Contains(msg.X, msg.Y) {
		return m, nil
	}
	p := dcore.P(
		core.Clamp((msg.X-r.X)/2, 0, m.level.Width-1),
		core.Clamp(msg.Y-r.Y, 0, m.level.Height-1),
	)
	if msg.Action == tea.MouseActionMotion && p == m.cursor {
		return m, nil
	}
	m.flash = ""
	m.cursor = p
	cmd := m.paint()
	return m, cmd
}

func (m EditorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	key := msg.String()

	switch key {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc":
		m.backToMenu = true
		if m.standalone {
			return m, tea.Quit
		}
		return m, nil

	case "up", "w", "k":
		m.moveCursor(dcore.DirUp)
	case "down", "s", "j":
		m.moveCursor(dcore.DirDown)
	case "left", "a", "h":
		m.moveCursor(dcore.DirLeft)
	case "right", "d", "l":
		m.moveCursor(dcore.DirRight)

	case "tab":
		m.tool = (m.tool + 1) % len(dcore.Tools)
	case "shift+tab":
		m.tool = (m.tool - 1 + len(dcore.Tools)) % len(dcore.Tools)
	case " ", "enter":
		cmd := m.paint()
		return m, cmd

	case "+", "=":
		m.resize(m.level.Width+1, m.level.Height)
	case "-", "_":
		m.resize(m.level.Width-1, m.level.Height)
	case "]":
		m.resize(m.level.Width, m.level.Height+1)
	case "[":
		m.resize(m.level.Width, m.level.Height-1)

	case "v":
		m.flash = m.check()
	case "t":
		return m.startTest()
	case "ctrl+s":
		m.flash = m.save()
	case "ctrl+e":
		m.flash = m.export()

	default:
		if len(key) == 1 && key[0] >= '1' && key[0] < '1'+byte(len(dcore.Tools)) {
			m.tool = int(key[0] - '1')
		}
	}
	return m, nil
}

func (m *EditorModel) moveCursor(d dcore.Dir) {
	if n := m.cursor.Step(d); m.level.InBounds(n) {
		m.cursor = n
	}
}

// paint applies the current brush at the cursor. A refused edit leaves the
// level alone and rings the error cue.
func (m *EditorModel) paint() tea.Cmd {
	next, err := dcore.Apply(m.level, dcore.Tools[m.tool], m.cursor)
	if err != nil {
		m.flash = editError(err)
		return bellCmd(m.opts, []string{duality.CueError})
	}
	m.level = next
	m.dirty = true
	return nil
}

func (m *EditorModel) resize(w, h int) {
	m.level = dcore.Resize(m.level, w, h)
	m.cursor = dcore.P(min(m.cursor.X, m.level.Width-1), min(m.cursor.Y, m.level.Height-1))
	m.dirty = true
}

// check lints the level and searches for a solution.
func (m EditorModel) check() string {
	if notes := dcore.Lint(m.level); len(notes) > 0 {
		return notes[0]
	}
	sol, err := dcore.Solve(m.level, solveLimit)
	if err != nil {
		return m.text.Stuck + ": " + editError(err)
	}
	return fmt.Sprintf("OK: %d %s", sol.Moves, strings.ToLower(m.text.Moves))
}

func (m EditorModel) startTest() (tea.Model, tea.Cmd) {
	if err := m.level.CheckStructure(); err != nil {
		m.flash = editError(err)
		return m, nil
	}
	info := registry.LevelInfo{ID: m.id, Title: m.title(), Source: registry.SourceCustom}
	gm := NewGameModel(duality.New(info, m.level), m.testOptions(), false)
	m.testing = &gm
	return m, gm.Init()
}

// testOptions keeps test runs out of the records.
func (m EditorModel) testOptions() Options {
	o := m.opts
	o.Store = nil
	return o
}

// save stores the level as a custom level and makes it playable.
func (m *EditorModel) save() string {
	if m.opts.Store == nil {
		return m.text.Error + ": no database"
	}
	if err := m.opts.Store.SaveLevel(m.id, m.name, m.level); err != nil {
		return editError(err)
	}
	lvl := levels.Level{ID: m.id, Name: m.name, Data: m.level.Clone()}
	if errs := duality.AddLevels(registry.SourceCustom, []levels.Level{lvl}); len(errs) > 0 {
		return editError(errs[0])
	}
	m.dirty = false
	return m.text.Saved
}

func (m EditorModel) export() string {
	path := m.exportPath
	if path == "" {
		path = filepath.Join(m.opts.ExportDir, m.id+".yaml")
	}
	lvl := levels.Level{ID: m.id, Name: m.name, Data: m.level}
	if err := levels.WriteFile(path, lvl); err != nil {
		return editError(err)
	}
	return m.text.Copied + " " + path
}

func (m EditorModel) title() string {
	if m.name != "" {
		return m.name
	}
	return m.id
}

func editError(err error) string {
	var verr dcore.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}

// View renders the editor or the running test.
func (m EditorModel) View() string {
	if m.quitting || (m.standalone && m.backToMenu) {
		return ""
	}
	if m.testing != nil {
		return m.testing.View()
	}
	m.render(m.screen)
	return RenderScreen(m.screen)
}

func (m EditorModel) render(dst *core.Screen) {
	dst.Clear()

	dirty := ""
	if m.dirty {
		dirty = " *"
	}
	dst.DrawText(1, 0, fmt.Sprintf("%s | %s%s  %s:%d %s:%d  %s",
		m.text.Edit, m.title(), dirty,
		m.text.Width, m.level.Width, m.text.Height, m.level.Height, m.cursor),
		core.ColorCyan)

	x := 1
	dst.DrawText(x, 1, m.text.Tools+":", core.ColorGray)
	x += len([]rune(m.text.Tools)) + 2
	for i, t := range dcore.Tools {
		label := fmt.Sprintf("%d %s", i+1, t)
		fg := core.ColorGray
		if i == m.tool {
			label = "[" + label + "]"
			fg = core.ColorBrightYellow
		}
		dst.DrawText(x, 1, label, fg)
		x += len([]rune(label)) + 1
	}

	r := m.boardRect(dst)
	duality.DrawBoard(dst, m.level, dcore.NewState(m.level), r.X, r.Y)

	// Cursor: invert the two cells of the tile under it.
	cx, cy := r.X+m.cursor.X*2, r.Y+m.cursor.Y
	for i := 0; i < 2; i++ {
		c := dst.GetCell(cx+i, cy)
		c.Fg, c.Bg = core.ColorBlack, core.ColorYellow
		if c.Rune == ' ' {
			c.Rune = []rune{'<', '>'}[i]
		}
		dst.SetCell(cx+i, cy, c)
	}

	y := dst.Height() - 2
	dst.DrawText(1, y, "Arrows: Move  Space/Click: Paint  1-7/Tab: Tool  +/-: W  [/]: H  V: Check  T: "+m.text.Test+"  ^S: Save  ^E: Export  Esc: Back", core.ColorGray)
	if m.flash != "" {
		dst.DrawText(1, y+1, m.flash, core.ColorOrange)
	}
}

// boardRect is where the board sits on dst, below the title and palette.
func (m EditorModel) boardRect(dst *core.Screen) core.Rect {
	w, h := duality.BoardSize(m.level)
	return core.NewRect(0, 3, dst.Width(), dst.Height()-5).Centered(w, h)
}

// Level returns the level being edited.
func (m EditorModel) Level() *dcore.Level {
	return m.level
}

// IsQuitting returns true if user requested to quit entirely.
func (m EditorModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m EditorModel) BackToMenu() bool {
	return m.backToMenu
}

// RunEditor runs the editor as its own program and returns the edited level.
func RunEditor(m EditorModel) (*dcore.Level, error) {
	m.standalone = true
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if em, ok := final.(EditorModel); ok {
		return em.Level(), nil
	}
	return m.Level(), nil
}
