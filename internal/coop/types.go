// Package coop runs shared Duality rooms: two remote participants, or one
// participant playing both tokens, acting on a single authoritative state.
package coop

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
)

// SessionID uniquely identifies a participant's connection
// (an SSH session, a websocket, an MCP client).
type SessionID string

// NewSessionID returns a random session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// Side is the set of tokens a participant may move.
type Side uint8

const (
	SideNone Side = iota
	SideWhite
	SideBlack
	SideBoth
)

// String returns the lowercase side name.
func (s Side) String() string {
	switch s {
	case SideWhite:
		return "white"
	case SideBlack:
		return "black"
	case SideBoth:
		return "both"
	default:
		return "none"
	}
}

// MarshalText encodes the side by name.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a side name.
func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "white":
		*s = SideWhite
	case "black":
		*s = SideBlack
	case "both":
		*s = SideBoth
	case "none", "":
		*s = SideNone
	default:
		return fmt.Errorf("unknown side %q", b)
	}
	return nil
}

// Holds reports whether the side may move token c.
func (s Side) Holds(c core.Character) bool {
	switch s {
	case SideBoth:
		return true
	case SideWhite:
		return c == core.White
	case SideBlack:
		return c == core.Black
	default:
		return false
	}
}

// Participant is one member of a room.
type Participant struct {
	ID   SessionID `json:"id"`
	Name string    `json:"name"`
	Side Side      `json:"side"`
}

// RoomView is a read-only copy of a room, safe to hand to other goroutines.
type RoomView struct {
	Code         string        `json:"code"`
	LevelID      string        `json:"levelId"`
	Level        *core.Level   `json:"level"`
	State        core.State    `json:"state"`
	Won          bool          `json:"won"`
	Solo         bool          `json:"solo"`
	Seq          uint64        `json:"seq"`
	Participants []Participant `json:"participants"`
	Cues         []string      `json:"cues,omitempty"`
}

// SideOf returns the side held by id in this view.
func (v RoomView) SideOf(id SessionID) Side {
	for _, p := range v.Participants {
		if p.ID == id {
			return p.Side
		}
	}
	return SideNone
}

// RunResult describes a cleared room level for persistence.
type RunResult struct {
	RoomCode     string
	LevelID      string
	Moves        int
	Players      string // participant names joined with "+"
	DurationSecs int
}

// RunSaver is an interface for saving cleared runs.
// This allows the coordinator to save results without depending on the storage package.
type RunSaver interface {
	SaveRoomRun(result RunResult) error
}

// Errors returned by coordinator requests.
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyInRoom = errors.New("already in a room")
	ErrNotInRoom     = errors.New("not in a room")
	ErrNotYourToken  = errors.New("the active token belongs to your partner")
	ErrTooManyRooms  = errors.New("too many open rooms")
	ErrStopped       = errors.New("coordinator stopped")
)

// LevelSource resolves a level ID to a fresh copy of the level.
type LevelSource func(id string) (*core.Level, error)

// generateRoomCode creates a 6-character uppercase code from the base32
// alphabet (A-Z, 2-7).
func generateRoomCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	return base32.StdEncoding.EncodeToString(b)[:6]
}

// NormalizeCode upper-cases a user-typed room code and strips spaces.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
