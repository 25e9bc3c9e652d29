package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-duality/internal/coop"
	"github.com/vovakirdan/tui-duality/internal/core"
	"github.com/vovakirdan/tui-duality/internal/games/duality"
	dcore "github.com/vovakirdan/tui-duality/internal/games/duality/core"
	"github.com/vovakirdan/tui-duality/internal/i18n"
	"github.com/vovakirdan/tui-duality/internal/registry"
)

// CoopState is the step of the co-op flow.
type CoopState int

const (
	CoopStateChoose    CoopState = iota // Host or join
	CoopStateEnterCode                  // Typing a room code
	CoopStateInRoom                     // Playing in a room
)

const requestTimeout = 3 * time.Second

// coopEventMsg wraps an event pushed by the coordinator.
type coopEventMsg struct {
	evt coop.Event
}

// coopReplyMsg is the answer to a request made by this session.
type coopReplyMsg struct {
	view coop.RoomView
	err  error
}

// CoopModel hosts or joins a room and plays it with a partner.
type CoopModel struct {
	state       CoopState
	coordinator *coop.Coordinator
	session     *coop.ChannelSession
	id          coop.SessionID
	levelID     string
	opts        Options
	text        *i18n.Text
	keys        *KeyMapper
	screen      *core.Screen

	codeInput string
	room      *coop.RoomView
	notice    string

	backToMenu bool
	quitting   bool
}

// NewCoopModel registers a session with the coordinator. levelID is the
// level a hosted room starts on.
func NewCoopModel(c *coop.Coordinator, levelID string, opts Options) CoopModel {
	id := coop.NewSessionID()
	sess := coop.NewChannelSession(id, 64)
	c.Sessions().Register(sess)

	m := CoopModel{
		coordinator: c,
		session:     sess,
		id:          id,
		levelID:     levelID,
		opts:        opts,
		text:        i18n.For(opts.Config.Lang),
		keys:        NewKeyMapper(opts.Keys, opts.Timing),
		screen:      core.NewScreen(opts.Config.ScreenW, opts.Config.ScreenH),
	}
	if opts.Done != nil {
		go func() {
			select {
			case <-opts.Done:
				m.Close()
			case <-sess.Done():
			}
		}()
	}
	return m
}

// Init starts listening for coordinator events.
func (m CoopModel) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent returns a command that waits for the next coordinator event.
func (m CoopModel) waitForEvent() tea.Cmd {
	events, done := m.session.Events(), m.session.Done()
	return func() tea.Msg {
		select {
		case evt := <-events:
			return coopEventMsg{evt: evt}
		case <-done:
			return nil
		}
	}
}

// request runs a coordinator call off the UI goroutine.
func (m CoopModel) request(call func(ctx context.Context) (coop.RoomView, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		view, err := call(ctx)
		return coopReplyMsg{view: view, err: err}
	}
}

// Update handles messages.
func (m CoopModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.opts.Config.ScreenW = msg.Width
		m.opts.Config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil
	case coopReplyMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
			return m, nil
		}
		m.notice = ""
		m.show(msg.view)
		return m, nil
	case coopEventMsg:
		return m.handleEvent(msg.evt)
	}
	return m, nil
}

// show adopts a room view unless a newer one is already displayed.
func (m *CoopModel) show(v coop.RoomView) {
	if m.room != nil && m.room.Code == v.Code && v.Seq < m.room.Seq {
		return
	}
	m.room = &v
	m.state = CoopStateInRoom
}

func (m CoopModel) handleEvent(evt coop.Event) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch e := evt.(type) {
	case coop.SnapshotEvent:
		m.show(e.Room)
		cmd = bellCmd(m.opts, e.Room.Cues)
	case coop.RoomErrorEvent:
		m.notice = e.Message
	case coop.PartnerJoinedEvent:
		m.notice = e.Partner.Name + " +"
	case coop.PartnerLeftEvent:
		m.notice = e.Partner.Name + " -"
	case coop.RoomClosedEvent:
		m.room = nil
		m.state = CoopStateChoose
		m.notice = fmt.Sprintf("%s %s: %s", m.text.Room, e.Code, e.Reason)
	}
	return m, tea.Batch(cmd, m.waitForEvent())
}

func (m CoopModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case CoopStateChoose:
		return m.handleChooseKey(msg)
	case CoopStateEnterCode:
		return m.handleCodeKey(msg)
	default:
		return m.handleRoomKey(msg)
	}
}

func (m CoopModel) handleChooseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "H", "1":
		name, levelID := m.opts.Player, m.levelID
		return m, m.request(func(ctx context.Context) (coop.RoomView, error) {
			return m.coordinator.CreateRoom(ctx, m.id, name, levelID, false)
		})
	case "j", "J", "2":
		m.state = CoopStateEnterCode
		m.codeInput = ""
		m.notice = ""
	case "esc", "b":
		m.backToMenu = true
	case "q":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m CoopModel) handleCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc":
		m.state = CoopStateChoose
	case "enter":
		if m.codeInput != "" {
			name, code := m.opts.Player, m.codeInput
			return m, m.request(func(ctx context.Context) (coop.RoomView, error) {
				return m.coordinator.JoinRoom(ctx, m.id, name, code)
			})
		}
	case "backspace":
		if m.codeInput != "" {
			m.codeInput = m.codeInput[:len(m.codeInput)-1]
		}
	default:
		if len(key) == 1 && len(m.codeInput) < 6 {
			c := strings.ToUpper(key)
			if (c[0] >= 'A' && c[0] <= 'Z') || (c[0] >= '2' && c[0] <= '7') {
				m.codeInput += c
			}
		}
	}
	return m, nil
}

func (m CoopModel) handleRoomKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "n" && m.room != nil && m.room.Won {
		next, ok := registry.Next(m.room.LevelID)
		if !ok {
			m.notice = m.text.Win
			return m, nil
		}
		return m, m.request(func(ctx context.Context) (coop.RoomView, error) {
			return m.coordinator.LoadLevel(ctx, m.id, next.ID)
		})
	}

	global, cmds := m.keys.MapKey(msg, time.Now())
	switch global {
	case core.ActionQuit:
		m.leave()
		m.quitting = true
		return m, tea.Quit
	case core.ActionBack:
		m.leave()
		m.backToMenu = true
		return m, nil
	}

	var batch []tea.Cmd
	for _, c := range cmds {
		batch = append(batch, m.request(func(ctx context.Context) (coop.RoomView, error) {
			return m.coordinator.Command(ctx, m.id, c)
		}))
	}
	switch len(batch) {
	case 0:
		return m, nil
	case 1:
		return m, batch[0]
	}
	// Commands must reach the room in key order.
	return m, tea.Sequence(batch...)
}

func (m *CoopModel) leave() {
	m.coordinator.Send(coop.LeaveRoomMsg{SessionID: m.id})
	m.room = nil
}

// Close disconnects the session from the coordinator.
func (m CoopModel) Close() {
	m.coordinator.Send(coop.SessionDisconnectedMsg{SessionID: m.id})
	m.coordinator.Sessions().Unregister(m.id)
	m.session.Close()
}

// View renders the current state.
func (m CoopModel) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	switch m.state {
	case CoopStateChoose:
		m.renderMenu(m.screen, []string{"[H] Host " + m.levelID, "[J] Join", "", "Esc: Back  |  Q: Quit"})
	case CoopStateEnterCode:
		code := m.codeInput + strings.Repeat("_", 6-len(m.codeInput))
		m.renderMenu(m.screen, []string{m.text.Room + ":", "[ " + code + " ]", "", "Enter: Join  |  Esc: Back"})
	default:
		m.renderRoom(m.screen)
	}
	return RenderScreen(m.screen)
}

func (m CoopModel) renderMenu(dst *core.Screen, lines []string) {
	y := max(dst.Height()/2-len(lines), 1)
	dst.DrawTextCentered(y-1, m.text.Title+" CO-OP", core.ColorBrightYellow)
	for i, line := range lines {
		dst.DrawTextCentered(y+1+i, line, core.ColorWhite)
	}
	if m.notice != "" {
		dst.DrawTextCentered(y+len(lines)+2, m.notice, core.ColorRed)
	}
}

func (m CoopModel) renderRoom(dst *core.Screen) {
	v := m.room
	if v == nil {
		return
	}

	side := v.SideOf(m.id)
	who := m.text.P1
	switch side {
	case coop.SideBlack:
		who = m.text.P2
	case coop.SideBoth:
		who = m.text.Both
	}
	title := v.LevelID
	if info, ok := registry.Info(v.LevelID); ok {
		title = info.Title
	}
	dst.DrawText(1, 0, fmt.Sprintf("%s %s | %s | %s %s", m.text.Room, v.Code, title, m.text.YouAre, who), core.ColorCyan)

	turn := m.text.P1
	if v.State.Active == dcore.Black {
		turn = m.text.P2
	}
	status := fmt.Sprintf("%s: %d  %s: %d/%d  > %s", m.text.Moves, v.State.Moves,
		m.text.Targets, v.State.CollectedCount(), len(v.Level.Targets), turn)
	fg := core.ColorYellow
	if !side.Holds(v.State.Active) {
		status += "  (" + m.text.NotYourTurn + ")"
		fg = core.ColorGray
	}
	dst.DrawText(1, 1, status, fg)

	w, h := duality.BoardSize(v.Level)
	r := core.NewRect(0, 3, dst.Width(), dst.Height()-5).Centered(w, h)
	duality.DrawBoard(dst, v.Level, v.State, r.X, r.Y)

	y := dst.Height() - 2
	names := make([]string, 0, len(v.Participants))
	for _, p := range v.Participants {
		names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.Side))
	}
	footer := strings.Join(names, "  ")
	if len(v.Participants) < 2 && !v.Solo {
		footer += "  " + m.text.Waiting + " [" + v.Code + "]"
	}
	dst.DrawText(1, y, footer, core.ColorGray)

	switch {
	case v.Won:
		dst.DrawText(1, y+1, m.text.Win+"  N: "+m.text.Next+"  R: "+m.text.Reset, core.ColorBrightYellow)
	case m.notice != "":
		dst.DrawText(1, y+1, m.notice, core.ColorOrange)
	default:
		dst.DrawText(1, y+1, m.text.Controls+"  Esc: Leave", core.ColorDarkGray)
	}
}

// State returns the current step of the flow.
func (m CoopModel) State() CoopState {
	return m.state
}

// Room returns the room on screen, or nil.
func (m CoopModel) Room() *coop.RoomView {
	return m.room
}

// BackToMenu returns true if user requested to go back to menu.
func (m CoopModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting returns true if user requested to quit entirely.
func (m CoopModel) IsQuitting() bool {
	return m.quitting
}
