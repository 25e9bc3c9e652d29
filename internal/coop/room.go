package coop

import (
	"strings"
	"time"

	"github.com/vovakirdan/tui-duality/internal/games/duality"
	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
	"github.com/vovakirdan/tui-duality/internal/input"
)

// Room is one shared level. It is only touched by the coordinator.
type Room struct {
	Code    string
	LevelID string

	level *core.Level
	state core.State
	won   bool
	solo  bool
	seq   uint64

	host  *Participant
	guest *Participant

	createdAt  time.Time
	startedAt  time.Time
	lastActive time.Time
}

func newRoom(code, levelID string, lvl *core.Level, host Participant, solo bool, now time.Time) *Room {
	r := &Room{
		Code:      code,
		host:      &host,
		solo:      solo,
		createdAt: now,
	}
	r.load(levelID, lvl, now)
	return r
}

// load puts a fresh level into the room.
func (r *Room) load(levelID string, lvl *core.Level, now time.Time) {
	r.LevelID = levelID
	r.level = lvl
	r.state = core.Reset(lvl)
	r.won = r.state.Complete()
	r.startedAt = now
	r.lastActive = now
	r.seq++
}

func (r *Room) participants() []Participant {
	out := []Participant{*r.host}
	if r.guest != nil {
		out = append(out, *r.guest)
	}
	return out
}

func (r *Room) sideOf(id SessionID) Side {
	switch {
	case r.host != nil && r.host.ID == id:
		return r.host.Side
	case r.guest != nil && r.guest.ID == id:
		return r.guest.Side
	}
	return SideNone
}

func (r *Room) playerNames() string {
	names := make([]string, 0, 2)
	for _, p := range r.participants() {
		name := p.Name
		if name == "" {
			name = string(p.ID)
		}
		names = append(names, name)
	}
	return strings.Join(names, "+")
}

// apply runs one command for the participant id. Switch and reset are open
// to everyone in the room; a move needs the side holding the active token.
// Rejected moves return no cues and no error.
func (r *Room) apply(id SessionID, cmd input.Command, now time.Time) ([]string, error) {
	side := r.sideOf(id)
	if side == SideNone {
		return nil, ErrNotInRoom
	}
	r.lastActive = now

	switch cmd.Kind {
	case input.KindReset:
		wasWon := r.won
		r.state = core.Reset(r.level)
		r.won = r.state.Complete()
		r.startedAt = now
		r.seq++
		if r.won && !wasWon {
			return []string{duality.CueWin}, nil
		}
		return nil, nil
	case input.KindStart:
		return nil, nil
	}

	if r.won {
		return nil, nil
	}

	var o core.Outcome
	switch cmd.Kind {
	case input.KindSwitch:
		o = core.Switch(r.state)
	case input.KindMove:
		if !side.Holds(r.state.Active) {
			return nil, ErrNotYourToken
		}
		o = core.MoveDir(r.level, r.state, cmd.Dir)
	}

	r.state = o.State
	if o.Has(core.EventWin) {
		r.won = true
	}
	cues := duality.CuesFor(o)
	if len(cues) > 0 {
		r.seq++
	}
	return cues, nil
}

func (r *Room) view(cues []string) RoomView {
	return RoomView{
		Code:         r.Code,
		LevelID:      r.LevelID,
		Level:        r.level,
		State:        r.state.Clone(),
		Won:          r.won,
		Solo:         r.solo,
		Seq:          r.seq,
		Participants: r.participants(),
		Cues:         cues,
	}
}
