package coop

import "github.com/vovakirdan/tui-duality/internal/input"

// Event is sent from the coordinator to a session.
type Event interface {
	sessionEvent()
}

// SnapshotEvent carries the room after every committed change.
type SnapshotEvent struct {
	Room RoomView
}

func (SnapshotEvent) sessionEvent() {}

// RoomErrorEvent is sent to the session whose request failed.
type RoomErrorEvent struct {
	Code    string
	Message string
}

func (RoomErrorEvent) sessionEvent() {}

// PartnerJoinedEvent is sent to the host when a partner joins.
type PartnerJoinedEvent struct {
	Code    string
	Partner Participant
}

func (PartnerJoinedEvent) sessionEvent() {}

// PartnerLeftEvent is sent to the host when the partner leaves.
type PartnerLeftEvent struct {
	Code    string
	Partner Participant
}

func (PartnerLeftEvent) sessionEvent() {}

// RoomClosedEvent is sent when a room shuts down.
type RoomClosedEvent struct {
	Code   string
	Reason string
}

func (RoomClosedEvent) sessionEvent() {}

// Message is sent from a session to the coordinator.
type Message interface {
	coordinatorMessage()
}

// reply carries the answer to a synchronous request.
type reply struct {
	view RoomView
	err  error
}

// CreateRoomMsg opens a room on a level. A solo room has one participant
// holding both tokens and cannot be joined.
type CreateRoomMsg struct {
	SessionID SessionID
	Name      string
	LevelID   string
	Solo      bool
	reply     chan<- reply
}

func (CreateRoomMsg) coordinatorMessage() {}

// JoinRoomMsg joins an open room as the Black token.
type JoinRoomMsg struct {
	SessionID SessionID
	Name      string
	Code      string
	reply     chan<- reply
}

func (JoinRoomMsg) coordinatorMessage() {}

// CommandMsg applies a move, switch or reset in the sender's room.
type CommandMsg struct {
	SessionID SessionID
	Command   input.Command
	reply     chan<- reply
}

func (CommandMsg) coordinatorMessage() {}

// LoadLevelMsg replaces the level of the sender's room.
type LoadLevelMsg struct {
	SessionID SessionID
	LevelID   string
	reply     chan<- reply
}

func (LoadLevelMsg) coordinatorMessage() {}

// LeaveRoomMsg leaves the sender's room. A leaving host closes the room.
type LeaveRoomMsg struct {
	SessionID SessionID
}

func (LeaveRoomMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}
