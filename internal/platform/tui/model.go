package tui

import (
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-duality/internal/coop"
	"github.com/vovakirdan/tui-duality/internal/core"
	"github.com/vovakirdan/tui-duality/internal/games/duality"
	"github.com/vovakirdan/tui-duality/internal/input"
	"github.com/vovakirdan/tui-duality/internal/registry"
	"github.com/vovakirdan/tui-duality/internal/storage"
)

// Options carries what every screen of a session shares.
type Options struct {
	Store  *storage.Store
	Config core.RuntimeConfig
	Keys   input.Bindings
	Timing input.Timing
	Player string

	// Bell rings the terminal bell on collect, win and error cues,
	// written to Out (os.Stdout when nil).
	Bell bool
	Out  io.Writer

	// Coordinator enables co-op rooms. Nil hides them.
	Coordinator *coop.Coordinator

	// Done closes when the connection behind the session goes away.
	Done <-chan struct{}

	// ExportDir is where the editor writes exported levels.
	ExportDir string
}

// DefaultOptions returns options for a local session without storage.
func DefaultOptions() Options {
	return Options{
		Config: core.DefaultConfig(),
		Keys:   input.MustBindings(input.DefaultKeys),
		Timing: input.DefaultTiming(),
		Player: "player",
	}
}

func (o Options) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

var bellCues = map[string]bool{
	duality.CueCollect: true,
	duality.CueWin:     true,
	duality.CueError:   true,
}

// bellCmd rings the terminal bell once if any cue calls for it.
func bellCmd(opts Options, cues []string) tea.Cmd {
	if !opts.Bell {
		return nil
	}
	for _, c := range cues {
		if bellCues[c] {
			w := opts.out()
			return func() tea.Msg {
				//nolint:errcheck // The bell is cosmetic
				w.Write([]byte("\a"))
				return nil
			}
		}
	}
	return nil
}

type resizer interface {
	Resize(w, h int)
}

// GameModel drives one game: keys and mouse gestures become input
// frames, ticks step the game and a cleared level is saved once.
type GameModel struct {
	game       registry.Game
	screen     *core.Screen
	opts       Options
	keys       *KeyMapper
	touch      *input.Touch
	inputFrame core.InputFrame
	gameState  core.GameState
	standalone bool
	quitting   bool
	backToMenu bool
}

// NewGameModel creates a model for the given game. A standalone model
// quits on back instead of returning to a menu.
func NewGameModel(game registry.Game, opts Options, standalone bool) GameModel {
	game.Reset(opts.Config)
	return GameModel{
		game:       game,
		screen:     core.NewScreen(opts.Config.ScreenW, opts.Config.ScreenH),
		opts:       opts,
		keys:       NewKeyMapper(opts.Keys, opts.Timing),
		touch:      input.NewTouch(opts.Timing),
		inputFrame: core.NewInputFrame(),
		gameState:  game.State(),
		standalone: standalone,
	}
}

// Init starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	return tickCmd(m.opts.Config.TickRate)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case TickMsg:
		return m.handleTick(time.Time(msg))
	}
	return m, nil
}

func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.MapKeyToFrame(msg, time.Now(), &m.inputFrame) {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case core.ActionBack:
		if m.standalone {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true
	}
	return m, nil
}

// handleMouse turns a press and release of the left button into a swipe
// or a tap. Columns are halved so a swipe is measured in board tiles.
func (m GameModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionRelease {
		return m, nil
	}
	x, y := float64(msg.X)/2, float64(msg.Y)
	now := time.Now()
	switch msg.Action {
	case tea.MouseActionPress:
		m.touch.Begin(x, y, now)
	case tea.MouseActionRelease:
		for _, c := range m.touch.End(x, y, now) {
			m.inputFrame.Set(CommandAction(c))
		}
	}
	return m, nil
}

func (m GameModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.opts.Config.ScreenW = msg.Width
	m.opts.Config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	if r, ok := m.game.(resizer); ok {
		r.Resize(msg.Width, msg.Height)
	} else {
		m.game.Reset(m.opts.Config)
	}
	return m, nil
}

func (m GameModel) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.keys.Tick(now, &m.inputFrame)

	levelID := m.game.ID()
	wasWon := m.gameState.Won
	result := m.game.Step(m.inputFrame)
	m.inputFrame.Clear()

	if result.Has(duality.CueWin) && !wasWon && result.State.Moves > 0 && m.opts.Store != nil {
		//nolint:errcheck // Best-effort save, the game continues regardless
		m.opts.Store.SaveRun(levelID, result.State.Moves, m.opts.Player)
	}
	m.gameState = result.State

	return m, tea.Batch(tickCmd(m.opts.Config.TickRate), bellCmd(m.opts, result.Cues))
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}
	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// State returns the last stepped game state.
func (m GameModel) State() core.GameState {
	return m.gameState
}

// Run plays a single game until the player quits.
func Run(game registry.Game, opts Options) error {
	p := tea.NewProgram(
		NewGameModel(game, opts, true),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
