package coop

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
	"github.com/vovakirdan/tui-duality/internal/input"
)

const tutorial = "right down switch left up up up left left left down down down up up up right right right down down switch down down right right right up up up"

type memSaver struct {
	runs chan RunResult
}

func (m *memSaver) SaveRoomRun(r RunResult) error {
	m.runs <- r
	return nil
}

func levels(id string) (*core.Level, error) {
	switch id {
	case "tutorial":
		return core.InitialLevel(), nil
	case "two":
		return core.LevelTwo(), nil
	}
	return nil, ErrRoomNotFound
}

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Levels = levels
	cfg.Logger = log.New(io.Discard)
	c := NewCoordinator(cfg, NewSessionRegistry())
	c.Start()
	t.Cleanup(c.Stop)
	return c
}

func connect(c *Coordinator, id SessionID) *ChannelSession {
	s := NewChannelSession(id, 256)
	c.Sessions().Register(s)
	return s
}

func ctx(t *testing.T) context.Context {
	t.Helper()
	cx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return cx
}

func command(word string) input.Command {
	cmd, ok := input.ParseCommand(word)
	if !ok {
		panic("bad command " + word)
	}
	return cmd
}

func drain(s *ChannelSession) []Event {
	var out []Event
	for {
		select {
		case e := <-s.Events():
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestSoloRoomPlaysTutorialAndSavesRun(t *testing.T) {
	c := newTestCoordinator(t)
	saver := &memSaver{runs: make(chan RunResult, 1)}
	c.SetRunSaver(saver)

	view, err := c.CreateRoom(ctx(t), "solo", "Ann", "tutorial", true)
	require.NoError(t, err)
	assert.Len(t, view.Code, 6)
	assert.Equal(t, SideBoth, view.SideOf("solo"))

	for _, w := range strings.Fields(tutorial) {
		view, err = c.Command(ctx(t), "solo", command(w))
		require.NoError(t, err)
	}
	assert.True(t, view.Won)
	assert.Equal(t, 28, view.State.Moves)
	assert.Equal(t, []string{"move", "win"}, view.Cues)

	select {
	case run := <-saver.runs:
		assert.Equal(t, "tutorial", run.LevelID)
		assert.Equal(t, 28, run.Moves)
		assert.Equal(t, "Ann", run.Players)
		assert.Equal(t, view.Code, run.RoomCode)
	case <-time.After(2 * time.Second):
		t.Fatal("run was not saved")
	}
}

func TestCoopSidesGateMoves(t *testing.T) {
	c := newTestCoordinator(t)

	room, err := c.CreateRoom(ctx(t), "host", "Ann", "tutorial", false)
	require.NoError(t, err)
	assert.Equal(t, SideWhite, room.SideOf("host"))

	room, err = c.JoinRoom(ctx(t), "guest", "Bob", strings.ToLower(room.Code))
	require.NoError(t, err)
	assert.Equal(t, SideBlack, room.SideOf("guest"))
	assert.Len(t, room.Participants, 2)

	// White is active: the guest cannot move it.
	_, err = c.Command(ctx(t), "guest", input.Move(core.DirRight))
	assert.ErrorIs(t, err, ErrNotYourToken)

	view, err := c.Command(ctx(t), "host", input.Move(core.DirRight))
	require.NoError(t, err)
	assert.Equal(t, core.P(2, 1), view.State.P1)

	// Anyone may switch.
	view, err = c.Command(ctx(t), "guest", input.Switch())
	require.NoError(t, err)
	assert.Equal(t, core.Black, view.State.Active)

	_, err = c.Command(ctx(t), "host", input.Move(core.DirLeft))
	assert.ErrorIs(t, err, ErrNotYourToken)

	view, err = c.Command(ctx(t), "guest", input.Move(core.DirLeft))
	require.NoError(t, err)
	assert.Equal(t, core.P(4, 5), view.State.P2)
	assert.Equal(t, 2, view.State.Moves)
}

func TestCommandsApplyToLatestState(t *testing.T) {
	c := newTestCoordinator(t)
	room, err := c.CreateRoom(ctx(t), "host", "", "tutorial", true)
	require.NoError(t, err)

	// Fire moves without waiting; the loop applies them in arrival order.
	for _, w := range []string{"right", "down"} {
		c.Send(CommandMsg{SessionID: "host", Command: command(w)})
	}
	view, err := c.Command(ctx(t), "host", input.Switch())
	require.NoError(t, err)
	assert.Equal(t, core.P(2, 2), view.State.P1)
	assert.Equal(t, 2, view.State.Moves)

	got, ok := c.Room(room.Code)
	require.True(t, ok)
	assert.Equal(t, view.State, got.State)
}

func TestJoinErrors(t *testing.T) {
	c := newTestCoordinator(t)

	_, err := c.JoinRoom(ctx(t), "x", "", "NOPE22")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	solo, err := c.CreateRoom(ctx(t), "solo", "", "tutorial", true)
	require.NoError(t, err)
	_, err = c.JoinRoom(ctx(t), "x", "", solo.Code)
	assert.ErrorIs(t, err, ErrRoomFull)

	duo, err := c.CreateRoom(ctx(t), "host", "", "tutorial", false)
	require.NoError(t, err)
	_, err = c.JoinRoom(ctx(t), "guest", "", duo.Code)
	require.NoError(t, err)
	_, err = c.JoinRoom(ctx(t), "third", "", duo.Code)
	assert.ErrorIs(t, err, ErrRoomFull)

	_, err = c.CreateRoom(ctx(t), "host", "", "tutorial", false)
	assert.ErrorIs(t, err, ErrAlreadyInRoom)

	// Rejoining your own room is harmless.
	again, err := c.JoinRoom(ctx(t), "guest", "", duo.Code)
	require.NoError(t, err)
	assert.Equal(t, duo.Code, again.Code)

	_, err = c.CreateRoom(ctx(t), "other", "", "missing", false)
	assert.Error(t, err)

	_, err = c.Command(ctx(t), "stranger", input.Switch())
	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestMaxRooms(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Levels = levels
	cfg.MaxRooms = 1
	cfg.Logger = log.New(io.Discard)
	c := NewCoordinator(cfg, nil)
	c.Start()
	defer c.Stop()

	_, err := c.CreateRoom(ctx(t), "a", "", "tutorial", true)
	require.NoError(t, err)
	_, err = c.CreateRoom(ctx(t), "b", "", "tutorial", true)
	assert.ErrorIs(t, err, ErrTooManyRooms)
}

func TestEventsReachParticipants(t *testing.T) {
	c := newTestCoordinator(t)
	host := connect(c, "host")
	guest := connect(c, "guest")

	room, err := c.CreateRoom(ctx(t), "host", "", "tutorial", false)
	require.NoError(t, err)
	_, err = c.JoinRoom(ctx(t), "guest", "", room.Code)
	require.NoError(t, err)
	drain(host)
	drain(guest)

	_, err = c.Command(ctx(t), "host", input.Move(core.DirRight))
	require.NoError(t, err)

	for _, s := range []*ChannelSession{host, guest} {
		evs := drain(s)
		require.Len(t, evs, 1)
		snap, ok := evs[0].(SnapshotEvent)
		require.True(t, ok)
		assert.Equal(t, []string{"move"}, snap.Room.Cues)
	}

	// A rejected request is reported only to the sender.
	_, err = c.Command(ctx(t), "guest", input.Move(core.DirDown))
	require.Error(t, err)
	assert.Empty(t, drain(host))
	evs := drain(guest)
	require.Len(t, evs, 1)
	assert.IsType(t, RoomErrorEvent{}, evs[0])
}

func TestHostLeavingClosesRoom(t *testing.T) {
	c := newTestCoordinator(t)
	guest := connect(c, "guest")

	room, err := c.CreateRoom(ctx(t), "host", "", "tutorial", false)
	require.NoError(t, err)
	_, err = c.JoinRoom(ctx(t), "guest", "", room.Code)
	require.NoError(t, err)
	drain(guest)

	c.Send(LeaveRoomMsg{SessionID: "host"})
	require.Eventually(t, func() bool { return c.RoomCount() == 0 }, time.Second, 10*time.Millisecond)

	evs := drain(guest)
	require.NotEmpty(t, evs)
	closed, ok := evs[len(evs)-1].(RoomClosedEvent)
	require.True(t, ok)
	assert.Equal(t, "host left", closed.Reason)

	_, ok = c.RoomOf("guest")
	assert.False(t, ok)
}

func TestGuestDisconnectKeepsRoom(t *testing.T) {
	c := newTestCoordinator(t)
	host := connect(c, "host")

	room, err := c.CreateRoom(ctx(t), "host", "", "tutorial", false)
	require.NoError(t, err)
	_, err = c.JoinRoom(ctx(t), "guest", "Bob", room.Code)
	require.NoError(t, err)
	drain(host)

	c.Send(SessionDisconnectedMsg{SessionID: "guest"})
	require.Eventually(t, func() bool {
		v, ok := c.Room(room.Code)
		return ok && len(v.Participants) == 1
	}, time.Second, 10*time.Millisecond)

	evs := drain(host)
	require.NotEmpty(t, evs)
	left, ok := evs[0].(PartnerLeftEvent)
	require.True(t, ok)
	assert.Equal(t, "Bob", left.Partner.Name)

	// The seat is free again.
	_, err = c.JoinRoom(ctx(t), "late", "", room.Code)
	assert.NoError(t, err)
}

func TestLoadLevelResetsRoom(t *testing.T) {
	c := newTestCoordinator(t)
	_, err := c.CreateRoom(ctx(t), "host", "", "tutorial", true)
	require.NoError(t, err)
	_, err = c.Command(ctx(t), "host", input.Move(core.DirRight))
	require.NoError(t, err)

	view, err := c.LoadLevel(ctx(t), "host", "two")
	require.NoError(t, err)
	assert.Equal(t, "two", view.LevelID)
	assert.Equal(t, 9, view.Level.Width)
	assert.Equal(t, 0, view.State.Moves)
}

func TestIdleRoomsExpire(t *testing.T) {
	c := newTestCoordinator(t)
	_, err := c.CreateRoom(ctx(t), "host", "", "tutorial", true)
	require.NoError(t, err)

	c.mu.Lock()
	c.now = func() time.Time { return time.Now().Add(time.Hour) }
	c.mu.Unlock()
	c.cleanupIdleRooms()

	assert.Equal(t, 0, c.RoomCount())
}

func TestStoppedCoordinator(t *testing.T) {
	c := NewCoordinator(Config{Levels: levels, Logger: log.New(io.Discard)}, nil)
	c.Stop()
	_, err := c.CreateRoom(context.Background(), "a", "", "tutorial", true)
	assert.ErrorIs(t, err, ErrStopped)
	assert.False(t, IsRequestError(err))
	assert.True(t, IsRequestError(ErrRoomFull))
}

func TestChannelSessionDropsOldest(t *testing.T) {
	s := NewChannelSession("s", 2)
	s.Send(RoomErrorEvent{Message: "1"})
	s.Send(RoomErrorEvent{Message: "2"})
	s.Send(RoomErrorEvent{Message: "3"})

	evs := drain(s)
	require.Len(t, evs, 2)
	assert.Equal(t, "2", evs[0].(RoomErrorEvent).Message)
	assert.Equal(t, "3", evs[1].(RoomErrorEvent).Message)
	assert.Equal(t, 1, s.Dropped())

	s.Close()
	s.Close()
	s.Send(RoomErrorEvent{Message: "late"})
	assert.Empty(t, drain(s))
}

func TestRoomCodes(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code := generateRoomCode()
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, (r >= 'A' && r <= 'Z') || (r >= '2' && r <= '7'), "bad rune %q in %s", r, code)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 40)
	assert.Equal(t, "AB23CD", NormalizeCode("  ab23cd "))
}

func TestSideHolds(t *testing.T) {
	assert.True(t, SideBoth.Holds(core.White))
	assert.True(t, SideBoth.Holds(core.Black))
	assert.True(t, SideWhite.Holds(core.White))
	assert.False(t, SideWhite.Holds(core.Black))
	assert.False(t, SideNone.Holds(core.White))

	b, err := SideBlack.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "black", string(b))
}
