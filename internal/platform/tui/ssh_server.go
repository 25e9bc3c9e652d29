package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-duality/internal/i18n"
	"github.com/vovakirdan/tui-duality/internal/registry"
	"github.com/vovakirdan/tui-duality/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":2323").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.duality/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":2323",
		IdleTimeout: 10 * time.Minute,
	}
}

// SSHServer wraps a Wish SSH server that gives every connection its own
// session: menu, play, records, editor and co-op rooms.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	opts   Options
	logger *log.Logger
}

// NewSSHServer creates a new SSH server. opts is the template for every
// session; the player name and bell output are set per connection.
func NewSSHServer(cfg SSHServerConfig, opts Options, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "duality-ssh",
		})
	}

	srv := &SSHServer{
		config: cfg,
		opts:   opts,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".duality", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	opts := s.opts
	opts.Config.ScreenW = pty.Window.Width
	opts.Config.ScreenH = pty.Window.Height
	opts.Config.Lang = sessionLang(sshSession.Environ(), opts.Config.Lang)
	opts.Player = sshSession.User()
	opts.Out = sshSession
	opts.Done = sshSession.Context().Done()

	return NewSessionModel(opts), []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// sessionLang picks the UI language from the client's LANG, if sent.
func sessionLang(environ []string, fallback string) string {
	for _, kv := range environ {
		if v, ok := strings.CutPrefix(kv, "LANG="); ok && v != "" {
			tag := strings.SplitN(v, ".", 2)[0]
			return i18n.Code(strings.ReplaceAll(tag, "_", "-"))
		}
	}
	return fallback
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until Shutdown is called.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenGame
	screenScoreboard
	screenEditor
	screenCoop
)

// SessionModel manages the full session flow: the menu and the screens
// it opens. It is the top-level model for SSH sessions and local play.
type SessionModel struct {
	opts       Options
	current    sessionScreen
	menu       MenuModel
	game       *GameModel
	scoreboard *ScoreboardModel
	editor     *EditorModel
	coop       *CoopModel
	quitting   bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(opts Options) SessionModel {
	return SessionModel{
		opts: opts,
		menu: NewMenuModel(opts),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Config.ScreenW = wsm.Width
		m.opts.Config.ScreenH = wsm.Height
	}

	var (
		cmd  tea.Cmd
		done bool
	)
	switch m.current {
	case screenGame:
		next, c := m.game.Update(msg)
		gm := next.(GameModel)
		m.game, cmd = &gm, c
		m.quitting, done = gm.IsQuitting(), gm.BackToMenu()
	case screenScoreboard:
		next, c := m.scoreboard.Update(msg)
		sb := next.(ScoreboardModel)
		m.scoreboard, cmd = &sb, c
		m.quitting, done = sb.IsQuitting(), sb.IsGoingBack()
	case screenEditor:
		next, c := m.editor.Update(msg)
		em := next.(EditorModel)
		m.editor, cmd = &em, c
		m.quitting, done = em.IsQuitting(), em.BackToMenu()
	case screenCoop:
		next, c := m.coop.Update(msg)
		cm := next.(CoopModel)
		m.coop, cmd = &cm, c
		m.quitting, done = cm.IsQuitting(), cm.BackToMenu()
		if m.quitting || done {
			cm.Close()
		}
	default:
		return m.updateMenu(msg)
	}

	if m.quitting {
		return m, tea.Quit
	}
	if done {
		return m.showMenu()
	}
	return m, cmd
}

func (m SessionModel) showMenu() (tea.Model, tea.Cmd) {
	m.current = screenMenu
	m.game, m.scoreboard, m.editor, m.coop = nil, nil, nil, nil
	m.menu = m.menu.refreshed(m.opts)
	return m, m.menu.Init()
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	m.menu = next.(MenuModel)
	m.opts = m.menu.Options()

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	selected := m.menu.Selected()
	switch m.menu.Choice() {
	case ChoicePlay:
		game, err := registry.Create(selected.LevelID)
		if err != nil {
			return m.showMenu()
		}
		gm := NewGameModel(game, m.opts, false)
		m.game, m.current = &gm, screenGame
		return m, gm.Init()

	case ChoiceScoreboard:
		id := ""
		if selected != nil {
			id = selected.LevelID
		}
		sb := NewScoreboardModel(m.opts.Store, m.opts.Config.Lang, m.opts.Config.ScreenW, m.opts.Config.ScreenH, id)
		m.scoreboard, m.current = &sb, screenScoreboard
		return m, sb.Init()

	case ChoiceEdit:
		lvl, err := registry.Level(selected.LevelID)
		if err != nil {
			return m.showMenu()
		}
		id, name := selected.LevelID, selected.Title
		if selected.Source == registry.SourceCampaign {
			// Built-in levels cannot be replaced; edit a copy.
			id, name = selected.LevelID+"-copy", selected.Title+" (copy)"
		}
		em := NewEditorModel(id, name, lvl, m.opts)
		m.editor, m.current = &em, screenEditor
		return m, em.Init()

	case ChoiceNew:
		em := NewEditorModel(fmt.Sprintf("custom-%d", time.Now().Unix()), "", nil, m.opts)
		m.editor, m.current = &em, screenEditor
		return m, em.Init()

	case ChoiceCoop:
		cm := NewCoopModel(m.opts.Coordinator, selected.LevelID, m.opts)
		m.coop, m.current = &cm, screenCoop
		return m, cm.Init()
	}

	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.current {
	case screenGame:
		return m.game.View()
	case screenScoreboard:
		return m.scoreboard.View()
	case screenEditor:
		return m.editor.View()
	case screenCoop:
		return m.coop.View()
	}
	return m.menu.View()
}

// RunSession runs the full menu-driven session in the local terminal.
func RunSession(opts Options) error {
	p := tea.NewProgram(
		NewSessionModel(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	final, err := p.Run()
	if sm, ok := final.(SessionModel); ok && sm.coop != nil {
		sm.coop.Close()
	}
	return err
}

// RunScoreboard runs the records screen on its own.
func RunScoreboard(store *storage.Store, lang string, width, height int, levelID string) error {
	m := NewScoreboardModel(store, lang, width, height, levelID)
	m.standalone = true
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
