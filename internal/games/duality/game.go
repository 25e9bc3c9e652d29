// Package duality adapts the Duality rules to the platform game loop:
// it turns input frames into moves and switches, raises sound cues and
// draws the board into a screen buffer.
package duality

import (
	"fmt"
	"strings"

	platformcore "github.com/vovakirdan/tui-duality/internal/core"
	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
	"github.com/vovakirdan/tui-duality/internal/i18n"
	"github.com/vovakirdan/tui-duality/internal/input"
	"github.com/vovakirdan/tui-duality/internal/registry"
)

// Sound cue names raised in StepResult.Cues. They match core.EventKind names.
var (
	CueMove    = core.EventMove.String()
	CueSwitch  = core.EventSwitch.String()
	CueCollect = core.EventCollect.String()
	CueWin     = core.EventWin.String()
	CueError   = core.EventError.String()
)

const (
	hudHeight   = 3
	footHeight  = 2
	cellW       = 2
	flashFrames = 45
)

// Game is one play session on a single level.
type Game struct {
	info  registry.LevelInfo
	level *core.Level
	state core.State
	text  *i18n.Text

	screenW int
	screenH int

	started  bool
	gated    bool
	won      bool
	paused   bool
	tooSmall bool

	flash      string
	flashTicks int
}

// Option configures a Game.
type Option func(*Game)

// WithStartGate holds the game on a "press any key" screen until the
// first input arrives.
func WithStartGate() Option {
	return func(g *Game) { g.gated = true }
}

// New creates a game on a level. The level is cloned.
func New(info registry.LevelInfo, level *core.Level, opts ...Option) *Game {
	g := &Game{
		info:  info,
		level: level.Clone(),
		text:  i18n.For(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.Reset(platformcore.DefaultConfig())
	return g
}

// ID returns the level identifier.
func (g *Game) ID() string {
	return g.info.ID
}

// Title returns the level display name.
func (g *Game) Title() string {
	return g.info.Title
}

// Level returns the level being played. Callers must not modify it.
func (g *Game) Level() *core.Level {
	return g.level
}

// Core returns the current rules state.
func (g *Game) Core() core.State {
	return g.state.Clone()
}

// Reset restores the level's initial state. A level whose starts already
// cover every target is won immediately.
func (g *Game) Reset(cfg platformcore.RuntimeConfig) {
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	if cfg.Lang != "" {
		g.text = i18n.For(cfg.Lang)
	}
	g.state = core.Reset(g.level)
	g.won = g.state.Complete()
	g.paused = false
	g.started = !g.gated
	g.flash = ""
	g.flashTicks = 0
	g.layout()
}

// Resize updates the screen dimensions without touching the game state.
func (g *Game) Resize(w, h int) {
	g.screenW, g.screenH = w, h
	g.layout()
}

func (g *Game) layout() {
	g.tooSmall = g.screenW < g.level.Width*cellW+2 ||
		g.screenH < g.level.Height+hudHeight+footHeight
}

// Step applies one frame of input in arrival order.
func (g *Game) Step(in platformcore.InputFrame) platformcore.StepResult {
	if g.flashTicks > 0 {
		g.flashTicks--
		if g.flashTicks == 0 {
			g.flash = ""
		}
	}

	if in.Empty() {
		return platformcore.StepResult{State: g.State()}
	}

	var cues []string
	for _, a := range in.Order {
		cues = append(cues, g.action(a)...)
	}
	return platformcore.StepResult{State: g.State(), Cues: cues}
}

// Apply runs a single device-independent command.
func (g *Game) Apply(cmd input.Command) platformcore.StepResult {
	var cues []string
	switch cmd.Kind {
	case input.KindStart:
		g.started = true
	case input.KindReset:
		cues = g.action(platformcore.ActionRestart)
	case input.KindSwitch:
		cues = g.action(platformcore.ActionSwitch)
	case input.KindMove:
		cues = g.action(dirAction(cmd.Dir))
	}
	return platformcore.StepResult{State: g.State(), Cues: cues}
}

func (g *Game) action(a platformcore.Action) []string {
	if !g.started {
		// Any input opens the gate; the input itself is consumed.
		g.started = true
		return nil
	}

	switch a {
	case platformcore.ActionPause:
		g.paused = !g.paused
		return nil
	case platformcore.ActionRestart:
		wasWon := g.won
		g.state = core.Reset(g.level)
		g.won = g.state.Complete()
		g.paused = false
		if g.won && !wasWon {
			return []string{CueWin}
		}
		return nil
	case platformcore.ActionConfirm:
		if g.won {
			g.advance()
		}
		return nil
	}

	if g.won && a == platformcore.ActionSwitch {
		g.advance()
		return nil
	}
	if g.paused || g.won {
		return nil
	}

	switch a {
	case platformcore.ActionSwitch:
		return g.apply(core.Switch(g.state))
	case platformcore.ActionUp:
		return g.apply(core.MoveDir(g.level, g.state, core.DirUp))
	case platformcore.ActionDown:
		return g.apply(core.MoveDir(g.level, g.state, core.DirDown))
	case platformcore.ActionLeft:
		return g.apply(core.MoveDir(g.level, g.state, core.DirLeft))
	case platformcore.ActionRight:
		return g.apply(core.MoveDir(g.level, g.state, core.DirRight))
	}
	return nil
}

// apply commits an outcome and converts its events into cues.
func (g *Game) apply(o core.Outcome) []string {
	g.state = o.State
	if o.Has(core.EventWin) {
		g.won = true
	}
	return CuesFor(o)
}

// CuesFor converts the events of an outcome into cue names, in order.
func CuesFor(o core.Outcome) []string {
	cues := make([]string, 0, len(o.Events))
	for _, ev := range o.Events {
		cues = append(cues, ev.Kind.String())
	}
	return cues
}

// advance loads the next registered level after a clear.
func (g *Game) advance() {
	next, ok := registry.Next(g.info.ID)
	if !ok {
		g.flash = g.text.Win
		g.flashTicks = flashFrames
		return
	}
	lvl, err := registry.Level(next.ID)
	if err != nil {
		g.flash = g.text.Error
		g.flashTicks = flashFrames
		return
	}
	g.info = next
	g.level = lvl
	g.Reset(platformcore.RuntimeConfig{ScreenW: g.screenW, ScreenH: g.screenH})
	g.started = true
}

// Flash shows a short message in the footer.
func (g *Game) Flash(msg string) {
	g.flash = msg
	g.flashTicks = flashFrames
}

// State returns the platform view of the game.
func (g *Game) State() platformcore.GameState {
	return platformcore.GameState{
		Moves:     g.state.Moves,
		Collected: g.state.CollectedCount(),
		Targets:   len(g.level.Targets),
		Won:       g.won,
		Paused:    g.paused,
	}
}

func dirAction(d core.Dir) platformcore.Action {
	switch d {
	case core.DirUp:
		return platformcore.ActionUp
	case core.DirDown:
		return platformcore.ActionDown
	case core.DirLeft:
		return platformcore.ActionLeft
	default:
		return platformcore.ActionRight
	}
}

// Snapshot is a serializable view of a session for remote clients.
type Snapshot struct {
	LevelID string      `json:"levelId"`
	Title   string      `json:"title"`
	Level   *core.Level `json:"level"`
	State   core.State  `json:"state"`
	Won     bool        `json:"won"`
	Board   []string    `json:"board"`
}

// Snapshot captures the current session.
func (g *Game) Snapshot() Snapshot {
	board := strings.Split(strings.TrimRight(core.RenderASCII(g.level, g.state), "\n"), "\n")
	return Snapshot{
		LevelID: g.info.ID,
		Title:   g.info.Title,
		Level:   g.level.Clone(),
		State:   g.state.Clone(),
		Won:     g.won,
		Board:   board[1:],
	}
}

// Render draws the HUD, the board and any overlay.
func (g *Game) Render(dst *platformcore.Screen) {
	dst.Clear()
	if g.tooSmall {
		dst.DrawTextCentered(dst.Height()/2-1, "Window too small", platformcore.ColorRed)
		dst.DrawTextCentered(dst.Height()/2, fmt.Sprintf("need %dx%d", g.level.Width*cellW+2, g.level.Height+hudHeight+footHeight), platformcore.ColorGray)
		return
	}

	g.renderHUD(dst)
	origin := g.boardOrigin(dst)
	g.renderBoard(dst, origin)
	g.renderFooter(dst)

	switch {
	case !g.started:
		g.renderOverlay(dst, g.text.Title, g.text.PressStart)
	case g.won:
		g.renderOverlay(dst, g.text.Win, g.text.Next+" (ENTER)")
	case g.paused:
		g.renderOverlay(dst, g.text.Paused, g.text.Quit)
	}
}

func (g *Game) renderHUD(dst *platformcore.Screen) {
	dst.DrawText(1, 0, g.text.Title+" | "+g.info.Title, platformcore.ColorCyan)

	who := g.text.P1
	fg := platformcore.ColorBrightWhite
	if g.state.Active == core.Black {
		who = g.text.P2
		fg = platformcore.ColorGray
	}
	status := fmt.Sprintf("%s: %d  %s: %d/%d  ", g.text.Moves, g.state.Moves,
		g.text.Targets, g.state.CollectedCount(), len(g.level.Targets))
	dst.DrawText(1, 1, status, platformcore.ColorYellow)
	dst.DrawText(1+len([]rune(status)), 1, who, fg)

	for x := 0; x < dst.Width(); x++ {
		dst.SetCell(x, 2, platformcore.Cell{Rune: '─', Fg: platformcore.ColorDarkGray})
	}
}

// boardOrigin centers the board in the play area.
func (g *Game) boardOrigin(dst *platformcore.Screen) platformcore.Rect {
	area := platformcore.NewRect(0, hudHeight, dst.Width(), dst.Height()-hudHeight-footHeight)
	return area.Centered(g.level.Width*cellW, g.level.Height)
}

func (g *Game) renderBoard(dst *platformcore.Screen, r platformcore.Rect) {
	DrawBoard(dst, g.level, g.state, r.X, r.Y)
}

// BoardSize returns the number of screen cells the board of l covers.
func BoardSize(l *core.Level) (w, h int) {
	return l.Width * cellW, l.Height
}

// DrawBoard draws the effective grid of l in state s, with targets and
// tokens, its top-left corner at (x0, y0). The active token is bracketed;
// stacked tokens show both colors.
func DrawBoard(dst *platformcore.Screen, l *core.Level, s core.State, x0, y0 int) {
	grid := core.EffectiveGrid(l, &s)
	for y, row := range grid {
		for x, t := range row {
			p := core.P(x, y)
			left, right := tileCells(t)
			if i := l.TargetIndex(p); i >= 0 {
				mark := platformcore.Cell{Rune: '◆', Fg: platformcore.ColorBrightYellow, Bg: left.Bg}
				if i < len(s.Collected) && s.Collected[i] {
					mark = platformcore.Cell{Rune: '◇', Fg: platformcore.ColorOrange, Bg: left.Bg}
				}
				left, right = mark, platformcore.Cell{Rune: ' ', Bg: left.Bg}
			}
			if tok, ok := tokenAt(s, p); ok {
				left, right = tok[0], tok[1]
			}
			dst.SetCell(x0+x*cellW, y0+y, left)
			dst.SetCell(x0+x*cellW+1, y0+y, right)
		}
	}
}

func tokenAt(s core.State, p core.Pos) ([2]platformcore.Cell, bool) {
	onP1, onP2 := s.P1 == p, s.P2 == p
	switch {
	case onP1 && onP2:
		return [2]platformcore.Cell{
			{Rune: '◐', Fg: platformcore.ColorBrightWhite, Bg: platformcore.ColorMagenta},
			{Rune: '◑', Fg: platformcore.ColorBlack, Bg: platformcore.ColorMagenta},
		}, true
	case onP1:
		return tokenCells(s.Active == core.White, platformcore.ColorBrightWhite, platformcore.ColorDarkGray), true
	case onP2:
		return tokenCells(s.Active == core.Black, platformcore.ColorBlack, platformcore.ColorWhite), true
	}
	return [2]platformcore.Cell{}, false
}

func tokenCells(active bool, fg, bg platformcore.Color) [2]platformcore.Cell {
	if active {
		return [2]platformcore.Cell{{Rune: '[', Fg: fg, Bg: bg}, {Rune: ']', Fg: fg, Bg: bg}}
	}
	return [2]platformcore.Cell{{Rune: '█', Fg: fg, Bg: bg}, {Rune: '█', Fg: fg, Bg: bg}}
}

func tileCells(t core.Terrain) (platformcore.Cell, platformcore.Cell) {
	var c platformcore.Cell
	switch t {
	case core.Wall:
		c = platformcore.Cell{Rune: '▓', Fg: platformcore.ColorCharcoal}
	case core.LightTile:
		c = platformcore.Cell{Rune: ' ', Bg: platformcore.ColorWhite}
	case core.DarkTile:
		c = platformcore.Cell{Rune: ' ', Bg: platformcore.ColorDarkGray}
	default:
		c = platformcore.Cell{Rune: ' '}
	}
	return c, c
}

func (g *Game) renderFooter(dst *platformcore.Screen) {
	y := dst.Height() - footHeight
	dst.DrawText(1, y, g.text.Controls, platformcore.ColorGray)
	if g.flash != "" {
		dst.DrawText(1, y+1, g.flash, platformcore.ColorOrange)
	} else {
		dst.DrawText(1, y+1, g.text.Instructions, platformcore.ColorDarkGray)
	}
}

func (g *Game) renderOverlay(dst *platformcore.Screen, title, hint string) {
	w := max(len([]rune(title)), len([]rune(hint))) + 6
	box := dst.Bounds().Centered(w, 5)
	dst.FillRect(box, platformcore.Cell{Rune: ' ', Bg: platformcore.ColorBlack})
	dst.DrawBox(box, platformcore.ColorYellow)
	dst.DrawTextCentered(box.Y+1, title, platformcore.ColorBrightYellow)
	dst.DrawTextCentered(box.Y+3, hint, platformcore.ColorGray)
}
