package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-duality/internal/coop"
	"github.com/vovakirdan/tui-duality/internal/input"
	"github.com/vovakirdan/tui-duality/internal/registry"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	sessionBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ClientMessage is what a browser sends.
//
//	{"type":"move","dir":"up"}
//	{"type":"switch"} / {"type":"reset"}
//	{"type":"gamepad","gamepad":{"buttons":[...],"axes":[...]}}
//	{"type":"touch","phase":"start","x":3,"y":1}
//	{"type":"load","level":"bridge"}
type ClientMessage struct {
	Type    string              `json:"type"`
	Dir     string              `json:"dir,omitempty"`
	Level   string              `json:"level,omitempty"`
	Gamepad *input.GamepadFrame `json:"gamepad,omitempty"`
	Phase   string              `json:"phase,omitempty"` // start, end or cancel
	X       float64             `json:"x,omitempty"`
	Y       float64             `json:"y,omitempty"`
}

// ServerMessage is what the server pushes to a browser.
type ServerMessage struct {
	Type    string            `json:"type"` // welcome, snapshot, error, partner_joined, partner_left, closed
	You     coop.SessionID    `json:"you,omitempty"`
	Side    string            `json:"side,omitempty"`
	Room    *coop.RoomView    `json:"room,omitempty"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Partner *coop.Participant `json:"partner,omitempty"`
}

// client is one websocket participant.
type client struct {
	server  *Server
	conn    *websocket.Conn
	session *coop.ChannelSession
	send    chan []byte

	// Input adapters keep their own timing per connection.
	gamepad *input.Gamepad
	touch   *input.Touch
}

// handleSocket upgrades the connection and puts it in a room: a new one on
// ?level= when the path has no code, otherwise the room with that code.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	code := coop.NormalizeCode(mux.Vars(r)["code"])
	q := r.URL.Query()
	name := q.Get("name")
	levelID := q.Get("level")

	if code != "" {
		if _, ok := s.coordinator.Room(code); !ok {
			http.Error(w, coop.ErrRoomNotFound.Error(), http.StatusNotFound)
			return
		}
	} else {
		if levelID == "" {
			if all := registry.List(); len(all) > 0 {
				levelID = all[0].ID
			}
		}
		if !registry.Exists(levelID) {
			http.Error(w, fmt.Sprintf("unknown level %q", levelID), http.StatusNotFound)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		server:  s,
		conn:    conn,
		session: coop.NewChannelSession(coop.NewSessionID(), sessionBuffer),
		send:    make(chan []byte, sessionBuffer),
		gamepad: input.NewGamepad(s.timing, false),
		touch:   input.NewTouch(s.timing),
	}
	s.coordinator.Sessions().Register(c.session)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	var view coop.RoomView
	if code != "" {
		view, err = s.coordinator.JoinRoom(ctx, c.session.ID(), name, code)
	} else {
		view, err = s.coordinator.CreateRoom(ctx, c.session.ID(), name, levelID, isTrue(q.Get("solo")))
	}
	cancel()

	if err != nil {
		// The coordinator has already queued the error event for this session.
		s.log.Info("websocket rejected", "room", code, "error", err)
		go c.writePump()
		c.session.Close()
		s.coordinator.Sessions().Unregister(c.session.ID())
		return
	}

	s.log.Info("websocket joined", "room", view.Code, "session", c.session.ID())
	// Written before the pumps start so it always arrives first.
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteJSON(ServerMessage{Type: "welcome", You: c.session.ID(), Side: view.SideOf(c.session.ID()).String(), Code: view.Code})

	go c.writePump()
	go c.readPump()
}

func isTrue(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// queue encodes a message for the write pump, dropping it if the
// connection is too far behind.
func (c *client) queue(m ServerMessage) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// encodeEvent turns a coordinator event into a wire message.
func encodeEvent(evt coop.Event) (ServerMessage, bool) {
	switch e := evt.(type) {
	case coop.SnapshotEvent:
		room := e.Room
		return ServerMessage{Type: "snapshot", Room: &room, Code: room.Code}, true
	case coop.RoomErrorEvent:
		return ServerMessage{Type: "error", Code: e.Code, Message: e.Message}, true
	case coop.PartnerJoinedEvent:
		p := e.Partner
		return ServerMessage{Type: "partner_joined", Code: e.Code, Partner: &p}, true
	case coop.PartnerLeftEvent:
		p := e.Partner
		return ServerMessage{Type: "partner_left", Code: e.Code, Partner: &p}, true
	case coop.RoomClosedEvent:
		return ServerMessage{Type: "closed", Code: e.Code, Message: e.Reason}, true
	}
	return ServerMessage{}, false
}

// commands turns one client message into room commands.
func (c *client) commands(m ClientMessage, now time.Time) ([]input.Command, error) {
	switch m.Type {
	case "move":
		cmd, ok := input.ParseCommand(strings.ToLower(m.Dir))
		if !ok || cmd.Kind != input.KindMove {
			return nil, fmt.Errorf("unknown direction %q", m.Dir)
		}
		return []input.Command{cmd}, nil
	case "switch":
		return []input.Command{input.Switch()}, nil
	case "reset":
		return []input.Command{input.Reset()}, nil
	case "gamepad":
		if m.Gamepad == nil {
			return nil, fmt.Errorf("gamepad frame missing")
		}
		return c.gamepad.Poll(*m.Gamepad, now), nil
	case "touch":
		switch m.Phase {
		case "start":
			c.touch.Begin(m.X, m.Y, now)
			return nil, nil
		case "end":
			return c.touch.End(m.X, m.Y, now), nil
		case "cancel":
			c.touch.Cancel()
			return nil, nil
		}
		return nil, fmt.Errorf("unknown touch phase %q", m.Phase)
	}
	return nil, fmt.Errorf("unknown message type %q", m.Type)
}

// handle applies one client message. Refusals come back through the
// session as error events.
func (c *client) handle(m ClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	id := c.session.ID()
	if m.Type == "load" {
		if _, err := c.server.coordinator.LoadLevel(ctx, id, m.Level); err != nil {
			c.server.log.Debug("load refused", "session", id, "error", err)
		}
		return
	}

	cmds, err := c.commands(m, time.Now())
	if err != nil {
		c.queue(ServerMessage{Type: "error", Message: err.Error()})
		return
	}
	for _, cmd := range cmds {
		if _, err := c.server.coordinator.Command(ctx, id, cmd); err != nil {
			c.server.log.Debug("command refused", "session", id, "command", cmd.String(), "error", err)
		}
	}
}

// readPump reads client messages until the connection drops, then takes
// the participant out of its room.
func (c *client) readPump() {
	defer func() {
		if n := c.session.Dropped(); n > 0 {
			c.server.log.Debug("slow websocket client", "session", c.session.ID(), "dropped", n)
		}
		c.server.coordinator.Send(coop.SessionDisconnectedMsg{SessionID: c.session.ID()})
		c.server.coordinator.Sessions().Unregister(c.session.ID())
		c.session.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.log.Warn("websocket error", "session", c.session.ID(), "error", err)
			}
			return
		}
		var m ClientMessage
		if err := json.Unmarshal(data, &m); err != nil {
			c.queue(ServerMessage{Type: "error", Message: "invalid message"})
			continue
		}
		c.handle(m)
	}
}

// writePump forwards queued messages and room events to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	write := func(data []byte) bool {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		return c.conn.WriteMessage(websocket.TextMessage, data) == nil
	}

	for {
		select {
		case data := <-c.send:
			if !write(data) {
				return
			}
		case evt := <-c.session.Events():
			m, ok := encodeEvent(evt)
			if !ok {
				continue
			}
			data, err := json.Marshal(m)
			if err != nil || !write(data) {
				return
			}
			if m.Type == "closed" {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, m.Message))
				return
			}
		case <-c.session.Done():
			c.drain(write)
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drain flushes whatever is still buffered after the session closed.
func (c *client) drain(write func([]byte) bool) {
	for {
		select {
		case data := <-c.send:
			if !write(data) {
				return
			}
		case evt := <-c.session.Events():
			if m, ok := encodeEvent(evt); ok {
				data, _ := json.Marshal(m)
				if !write(data) {
					return
				}
			}
		default:
			return
		}
	}
}
