package core

// State is a complete snapshot of a game in progress.
// Transitions never modify a State in place; they return a new one.
type State struct {
	P1        Pos       `json:"p1Pos"`
	P2        Pos       `json:"p2Pos"`
	Active    Character `json:"activeChar"`
	Collected []bool    `json:"collectedTargets"`
	Moves     int       `json:"moves"`
}

// NewState returns the initial state for a level: both tokens on their
// starts, P1 active, no moves, and every target under a start already
// collected.
func NewState(l *Level) State {
	s := State{
		P1:        l.P1Start,
		P2:        l.P2Start,
		Active:    White,
		Collected: make([]bool, len(l.Targets)),
	}
	for i, t := range l.Targets {
		s.Collected[i] = t == s.P1 || t == s.P2
	}
	return s
}

// Reset is an alias of NewState kept for the transition vocabulary:
// move, switch and reset.
func Reset(l *Level) State {
	return NewState(l)
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	c := s
	c.Collected = append([]bool(nil), s.Collected...)
	return c
}

// Pos returns the position of the given token.
func (s State) Pos(c Character) Pos {
	if c == Black {
		return s.P2
	}
	return s.P1
}

// ActivePos returns the position of the active token.
func (s State) ActivePos() Pos {
	return s.Pos(s.Active)
}

// Inactive returns the token that is currently acting as terrain.
func (s State) Inactive() Character {
	return s.Active.Other()
}

// Overlapping reports whether both tokens share a cell.
func (s State) Overlapping() bool {
	return s.P1 == s.P2
}

// CollectedCount returns the number of collected targets.
func (s State) CollectedCount() int {
	n := 0
	for _, c := range s.Collected {
		if c {
			n++
		}
	}
	return n
}

// Complete reports whether the level is cleared: there is at least one
// target and all of them are collected.
func (s State) Complete() bool {
	return len(s.Collected) > 0 && s.CollectedCount() == len(s.Collected)
}

// withPos returns a copy of s with token c moved to p.
func (s State) withPos(c Character, p Pos) State {
	n := s.Clone()
	if c == Black {
		n.P2 = p
	} else {
		n.P1 = p
	}
	return n
}
