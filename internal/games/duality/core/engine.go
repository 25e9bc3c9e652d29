package core

// EventKind identifies a cue produced by a transition.
type EventKind uint8

const (
	EventMove EventKind = iota
	EventSwitch
	EventCollect
	EventWin
	EventError
)

// String returns the cue name.
func (k EventKind) String() string {
	switch k {
	case EventMove:
		return "move"
	case EventSwitch:
		return "switch"
	case EventCollect:
		return "collect"
	case EventWin:
		return "win"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a cue emitted by an accepted (or loudly rejected) transition.
type Event struct {
	Kind EventKind `json:"kind"`
	Char Character `json:"char"`
	At   Pos       `json:"at"`
	// Target is the index of the collected target for EventCollect and
	// EventWin, and -1 otherwise.
	Target int `json:"target"`
}

// Reason explains why a transition was rejected.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonBadVector
	ReasonOutOfBounds
	ReasonBlocked
	ReasonWrongTile
	ReasonOverlap
)

// String returns a short description of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "ok"
	case ReasonBadVector:
		return "not a unit cardinal step"
	case ReasonOutOfBounds:
		return "outside the grid"
	case ReasonBlocked:
		return "wall or void"
	case ReasonWrongTile:
		return "tile of the wrong shade"
	case ReasonOverlap:
		return "tokens overlap"
	default:
		return "unknown"
	}
}

// Outcome is the result of a transition. On rejection State is the input
// state unchanged.
type Outcome struct {
	State    State
	Accepted bool
	Reason   Reason
	Events   []Event
}

// Has reports whether the outcome carries an event of kind k.
func (o Outcome) Has(k EventKind) bool {
	for _, e := range o.Events {
		if e.Kind == k {
			return true
		}
	}
	return false
}

func reject(s State, r Reason, events ...Event) Outcome {
	return Outcome{State: s, Reason: r, Events: events}
}

// Move attempts to step the active token by (dx, dy), which must be a unit
// cardinal vector. Illegal moves are silent: the outcome is rejected, the
// state is returned unchanged and no events are produced.
//
// A legal move increments the move counter and collects every uncollected
// target at the destination. Collecting the last target emits EventWin,
// other collections emit EventCollect.
func Move(l *Level, s State, dx, dy int) Outcome {
	if _, ok := DirFromDelta(dx, dy); !ok {
		return reject(s, ReasonBadVector)
	}

	mover := s.Active
	dest := s.ActivePos().Add(dx, dy)
	if !l.InBounds(dest) {
		return reject(s, ReasonOutOfBounds)
	}

	t := EffectiveAt(l, &s, dest)
	if t == Wall || t == Void {
		return reject(s, ReasonBlocked)
	}
	if !canEnter(s, mover, dest, t) {
		return reject(s, ReasonWrongTile)
	}

	wasComplete := s.Complete()
	next := s.withPos(mover, dest)
	next.Moves++

	out := Outcome{
		Accepted: true,
		Events:   []Event{{Kind: EventMove, Char: mover, At: dest, Target: -1}},
	}

	collected := -1
	for i, target := range l.Targets {
		if target == dest && !next.Collected[i] {
			next.Collected[i] = true
			if collected < 0 {
				collected = i
			}
		}
	}
	if collected >= 0 {
		kind := EventCollect
		if next.Complete() && !wasComplete {
			kind = EventWin
		}
		out.Events = append(out.Events, Event{Kind: kind, Char: mover, At: dest, Target: collected})
	}

	out.State = next
	return out
}

// MoveDir is Move addressed by direction.
func MoveDir(l *Level, s State, d Dir) Outcome {
	dx, dy := d.Delta()
	return Move(l, s, dx, dy)
}

// canEnter applies the shade rule: P1 needs a dark tile, P2 a light one,
// and either may step onto the partner's body.
func canEnter(s State, mover Character, dest Pos, t Terrain) bool {
	otherAtTarget := s.Pos(mover.Other()) == dest
	return t == mover.Walks() || otherAtTarget
}

// Switch hands control to the other token. It is refused with an
// EventError while both tokens share a cell, since the inactive token
// would then have nowhere to be terrain.
func Switch(s State) Outcome {
	if s.Overlapping() {
		return reject(s, ReasonOverlap, Event{Kind: EventError, Char: s.Active, At: s.ActivePos(), Target: -1})
	}
	next := s.Clone()
	next.Active = s.Active.Other()
	return Outcome{
		State:    next,
		Accepted: true,
		Events:   []Event{{Kind: EventSwitch, Char: next.Active, At: next.ActivePos(), Target: -1}},
	}
}
