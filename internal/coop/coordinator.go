package coop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-duality/internal/input"
	"github.com/vovakirdan/tui-duality/internal/registry"
)

// Config holds configuration for the coordinator.
type Config struct {
	MaxRooms      int           // Open rooms allowed at once
	RoomTTL       time.Duration // Idle time before a room is closed
	CleanupPeriod time.Duration // How often to look for idle rooms
	Levels        LevelSource
	Logger        *log.Logger
}

// DefaultConfig returns sensible defaults resolving levels from the catalog.
func DefaultConfig() Config {
	return Config{
		MaxRooms:      64,
		RoomTTL:       30 * time.Minute,
		CleanupPeriod: 30 * time.Second,
		Levels:        registry.Level,
	}
}

// Coordinator owns every room. All changes go through its single message
// loop, so each command is applied to the latest committed state of its room.
type Coordinator struct {
	config   Config
	sessions *SessionRegistry
	saver    RunSaver // Optional, can be nil
	log      *log.Logger
	now      func() time.Time

	mu          sync.RWMutex
	rooms       map[string]*Room
	sessionRoom map[SessionID]string

	msgChan  chan Message
	done     chan struct{}
	stopOnce sync.Once
}

// NewCoordinator creates a new coordinator.
func NewCoordinator(cfg Config, sessions *SessionRegistry) *Coordinator {
	if cfg.Levels == nil {
		cfg.Levels = registry.Level
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	if sessions == nil {
		sessions = NewSessionRegistry()
	}
	return &Coordinator{
		config:      cfg,
		sessions:    sessions,
		log:         logger.WithPrefix("coop"),
		now:         time.Now,
		rooms:       make(map[string]*Room),
		sessionRoom: make(map[SessionID]string),
		msgChan:     make(chan Message, 256),
		done:        make(chan struct{}),
	}
}

// Sessions returns the registry used to deliver events.
func (c *Coordinator) Sessions() *SessionRegistry {
	return c.sessions
}

// SetRunSaver sets the optional run saver.
func (c *Coordinator) SetRunSaver(saver RunSaver) {
	c.saver = saver
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop shuts down the coordinator. Safe to call more than once.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg Message) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

// CreateRoom opens a room and waits for the result.
func (c *Coordinator) CreateRoom(ctx context.Context, id SessionID, name, levelID string, solo bool) (RoomView, error) {
	return c.request(ctx, func(ch chan<- reply) Message {
		return CreateRoomMsg{SessionID: id, Name: name, LevelID: levelID, Solo: solo, reply: ch}
	})
}

// JoinRoom joins a room and waits for the result.
func (c *Coordinator) JoinRoom(ctx context.Context, id SessionID, name, code string) (RoomView, error) {
	return c.request(ctx, func(ch chan<- reply) Message {
		return JoinRoomMsg{SessionID: id, Name: name, Code: code, reply: ch}
	})
}

// Command applies a command in the sender's room and waits for the result.
func (c *Coordinator) Command(ctx context.Context, id SessionID, cmd input.Command) (RoomView, error) {
	return c.request(ctx, func(ch chan<- reply) Message {
		return CommandMsg{SessionID: id, Command: cmd, reply: ch}
	})
}

// LoadLevel switches the sender's room to another level and waits for the result.
func (c *Coordinator) LoadLevel(ctx context.Context, id SessionID, levelID string) (RoomView, error) {
	return c.request(ctx, func(ch chan<- reply) Message {
		return LoadLevelMsg{SessionID: id, LevelID: levelID, reply: ch}
	})
}

func (c *Coordinator) request(ctx context.Context, build func(chan<- reply) Message) (RoomView, error) {
	ch := make(chan reply, 1)
	select {
	case c.msgChan <- build(ch):
	case <-c.done:
		return RoomView{}, ErrStopped
	case <-ctx.Done():
		return RoomView{}, ctx.Err()
	}
	select {
	case r := <-ch:
		return r.view, r.err
	case <-c.done:
		return RoomView{}, ErrStopped
	case <-ctx.Done():
		return RoomView{}, ctx.Err()
	}
}

// processMessages handles incoming messages.
func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg Message) {
	switch m := msg.(type) {
	case CreateRoomMsg:
		view, err := c.handleCreateRoom(m)
		answer(m.reply, view, err)
	case JoinRoomMsg:
		view, err := c.handleJoinRoom(m)
		answer(m.reply, view, err)
	case CommandMsg:
		view, err := c.handleCommand(m)
		answer(m.reply, view, err)
	case LoadLevelMsg:
		view, err := c.handleLoadLevel(m)
		answer(m.reply, view, err)
	case LeaveRoomMsg:
		c.handleLeave(m.SessionID, "left")
	case SessionDisconnectedMsg:
		c.handleLeave(m.SessionID, "disconnected")
	}
}

func answer(ch chan<- reply, view RoomView, err error) {
	if ch != nil {
		ch <- reply{view: view, err: err}
	}
}

func (c *Coordinator) handleCreateRoom(msg CreateRoomMsg) (RoomView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, inRoom := c.sessionRoom[msg.SessionID]; inRoom {
		return c.fail(msg.SessionID, "", ErrAlreadyInRoom)
	}
	if c.config.MaxRooms > 0 && len(c.rooms) >= c.config.MaxRooms {
		return c.fail(msg.SessionID, "", ErrTooManyRooms)
	}
	lvl, err := c.config.Levels(msg.LevelID)
	if err != nil {
		return c.fail(msg.SessionID, "", fmt.Errorf("load level %q: %w", msg.LevelID, err))
	}

	side := SideWhite
	if msg.Solo {
		side = SideBoth
	}
	code := c.generateUniqueCode()
	room := newRoom(code, msg.LevelID, lvl, Participant{ID: msg.SessionID, Name: msg.Name, Side: side}, msg.Solo, c.now())
	c.rooms[code] = room
	c.sessionRoom[msg.SessionID] = code

	c.log.Info("room created", "room", code, "level", msg.LevelID, "solo", msg.Solo)
	view := room.view(nil)
	c.broadcast(room, view)
	return view, nil
}

func (c *Coordinator) handleJoinRoom(msg JoinRoomMsg) (RoomView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	code := NormalizeCode(msg.Code)
	room, exists := c.rooms[code]
	if !exists {
		return c.fail(msg.SessionID, code, ErrRoomNotFound)
	}
	if current, inRoom := c.sessionRoom[msg.SessionID]; inRoom {
		if current == code {
			// Rejoining the same room returns its current view.
			return room.view(nil), nil
		}
		return c.fail(msg.SessionID, code, ErrAlreadyInRoom)
	}
	if room.solo || room.guest != nil {
		return c.fail(msg.SessionID, code, ErrRoomFull)
	}

	room.guest = &Participant{ID: msg.SessionID, Name: msg.Name, Side: SideBlack}
	room.lastActive = c.now()
	room.seq++
	c.sessionRoom[msg.SessionID] = code

	c.log.Info("partner joined", "room", code, "session", msg.SessionID)
	c.sendTo(room.host.ID, PartnerJoinedEvent{Code: code, Partner: *room.guest})
	view := room.view(nil)
	c.broadcast(room, view)
	return view, nil
}

func (c *Coordinator) handleCommand(msg CommandMsg) (RoomView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.roomOf(msg.SessionID)
	if !ok {
		return c.fail(msg.SessionID, "", ErrNotInRoom)
	}

	wasWon := room.won
	cues, err := room.apply(msg.SessionID, msg.Command, c.now())
	if err != nil {
		return c.fail(msg.SessionID, room.Code, err)
	}

	view := room.view(cues)
	if len(cues) > 0 || msg.Command.Kind == input.KindReset {
		c.broadcast(room, view)
	}
	if room.won && !wasWon {
		c.log.Info("level cleared", "room", room.Code, "level", room.LevelID, "moves", room.state.Moves)
		c.saveRun(room)
	}
	return view, nil
}

func (c *Coordinator) handleLoadLevel(msg LoadLevelMsg) (RoomView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.roomOf(msg.SessionID)
	if !ok {
		return c.fail(msg.SessionID, "", ErrNotInRoom)
	}
	lvl, err := c.config.Levels(msg.LevelID)
	if err != nil {
		return c.fail(msg.SessionID, room.Code, fmt.Errorf("load level %q: %w", msg.LevelID, err))
	}

	room.load(msg.LevelID, lvl, c.now())
	view := room.view(nil)
	c.broadcast(room, view)
	return view, nil
}

func (c *Coordinator) handleLeave(id SessionID, why string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.roomOf(id)
	if !ok {
		return
	}
	delete(c.sessionRoom, id)

	if room.host.ID == id {
		c.closeRoom(room, "host "+why)
		return
	}

	left := *room.guest
	room.guest = nil
	room.seq++
	c.log.Info("partner left", "room", room.Code, "session", id, "reason", why)
	c.sendTo(room.host.ID, PartnerLeftEvent{Code: room.Code, Partner: left})
	c.broadcast(room, room.view(nil))
}

// closeRoom removes a room and tells whoever is still in it. Must be called with lock held.
func (c *Coordinator) closeRoom(room *Room, reason string) {
	for _, p := range room.participants() {
		c.sendTo(p.ID, RoomClosedEvent{Code: room.Code, Reason: reason})
		delete(c.sessionRoom, p.ID)
	}
	delete(c.rooms, room.Code)
	c.log.Info("room closed", "room", room.Code, "reason", reason)
}

func (c *Coordinator) saveRun(room *Room) {
	if c.saver == nil {
		return
	}
	result := RunResult{
		RoomCode:     room.Code,
		LevelID:      room.LevelID,
		Moves:        room.state.Moves,
		Players:      room.playerNames(),
		DurationSecs: int(c.now().Sub(room.startedAt).Seconds()),
	}
	saver, logger := c.saver, c.log
	// Best effort save, don't block the loop
	go func() {
		if err := saver.SaveRoomRun(result); err != nil {
			logger.Warn("cannot save run", "room", result.RoomCode, "error", err)
		}
	}()
}

// fail reports err to the session and returns it.
func (c *Coordinator) fail(id SessionID, code string, err error) (RoomView, error) {
	c.sendTo(id, RoomErrorEvent{Code: code, Message: err.Error()})
	return RoomView{}, err
}

func (c *Coordinator) roomOf(id SessionID) (*Room, bool) {
	code, ok := c.sessionRoom[id]
	if !ok {
		return nil, false
	}
	room, ok := c.rooms[code]
	return room, ok
}

func (c *Coordinator) sendTo(id SessionID, evt Event) {
	if s, ok := c.sessions.Get(id); ok {
		s.Send(evt)
	}
}

func (c *Coordinator) broadcast(room *Room, view RoomView) {
	for _, p := range room.participants() {
		c.sendTo(p.ID, SnapshotEvent{Room: view})
	}
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupIdleRooms()
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) cleanupIdleRooms() {
	if c.config.RoomTTL <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, room := range c.rooms {
		if now.Sub(room.lastActive) > c.config.RoomTTL {
			c.closeRoom(room, "expired")
		}
	}
}

func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateRoomCode()
		if _, exists := c.rooms[code]; !exists {
			return code
		}
	}
}

// Room returns a view of a room by code.
func (c *Coordinator) Room(code string) (RoomView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rooms[NormalizeCode(code)]
	if !ok {
		return RoomView{}, false
	}
	return r.view(nil), true
}

// RoomOf returns the view of the room a session is in.
func (c *Coordinator) RoomOf(id SessionID) (RoomView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.roomOf(id)
	if !ok {
		return RoomView{}, false
	}
	return r.view(nil), true
}

// RoomCount returns the number of open rooms.
func (c *Coordinator) RoomCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rooms)
}

// IsRequestError reports whether err came from a rejected request rather
// than the coordinator shutting down or a cancelled context.
func IsRequestError(err error) bool {
	return err != nil && !errors.Is(err, ErrStopped) &&
		!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
