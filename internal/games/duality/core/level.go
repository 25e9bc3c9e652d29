package core

import "fmt"

// Level is the static description of a puzzle. Terrain is indexed [y][x].
// A level is never mutated while it is being played; editor operations
// return modified copies.
type Level struct {
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Terrain [][]Terrain `json:"terrain"`
	P1Start Pos         `json:"p1Start"`
	P2Start Pos         `json:"p2Start"`
	Targets []Pos       `json:"targets"`
}

// NewLevel creates a w x h level filled with the given terrain.
// Both starts are at the origin and there are no targets.
func NewLevel(w, h int, fill Terrain) *Level {
	l := &Level{
		Width:   w,
		Height:  h,
		Terrain: make([][]Terrain, h),
		Targets: []Pos{},
	}
	for y := range l.Terrain {
		row := make([]Terrain, w)
		for x := range row {
			row[x] = fill
		}
		l.Terrain[y] = row
	}
	return l
}

// InBounds reports whether p lies inside the grid.
func (l *Level) InBounds(p Pos) bool {
	return p.X >= 0 && p.X < l.Width && p.Y >= 0 && p.Y < l.Height
}

// At returns the raw terrain at p, or Void outside the grid.
func (l *Level) At(p Pos) Terrain {
	if !l.InBounds(p) {
		return Void
	}
	return l.Terrain[p.Y][p.X]
}

// Start returns the start position of the given token.
func (l *Level) Start(c Character) Pos {
	if c == Black {
		return l.P2Start
	}
	return l.P1Start
}

// TargetIndex returns the index of the first target at p, or -1.
func (l *Level) TargetIndex(p Pos) int {
	for i, t := range l.Targets {
		if t == p {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the level.
func (l *Level) Clone() *Level {
	c := &Level{
		Width:   l.Width,
		Height:  l.Height,
		Terrain: make([][]Terrain, len(l.Terrain)),
		P1Start: l.P1Start,
		P2Start: l.P2Start,
		Targets: make([]Pos, len(l.Targets)),
	}
	for y, row := range l.Terrain {
		c.Terrain[y] = append([]Terrain(nil), row...)
	}
	copy(c.Targets, l.Targets)
	return c
}

// Equal reports whether two levels describe the same puzzle.
func (l *Level) Equal(o *Level) bool {
	if l.Width != o.Width || l.Height != o.Height ||
		l.P1Start != o.P1Start || l.P2Start != o.P2Start ||
		len(l.Targets) != len(o.Targets) || len(l.Terrain) != len(o.Terrain) {
		return false
	}
	for i := range l.Targets {
		if l.Targets[i] != o.Targets[i] {
			return false
		}
	}
	for y := range l.Terrain {
		if len(l.Terrain[y]) != len(o.Terrain[y]) {
			return false
		}
		for x := range l.Terrain[y] {
			if l.Terrain[y][x] != o.Terrain[y][x] {
				return false
			}
		}
	}
	return true
}

// CheckStructure verifies that the level is internally consistent:
// positive size, a terrain matrix matching that size with known kinds,
// and starts and targets inside the grid.
func (l *Level) CheckStructure() error {
	if l.Width < 1 || l.Height < 1 {
		return ValidationError{
			Code:    CodeBadSize,
			Message: fmt.Sprintf("size %dx%d must be positive", l.Width, l.Height),
		}
	}
	if len(l.Terrain) != l.Height {
		return ValidationError{
			Code:    CodeBadTerrain,
			Message: fmt.Sprintf("terrain has %d rows, want %d", len(l.Terrain), l.Height),
		}
	}
	for y, row := range l.Terrain {
		if len(row) != l.Width {
			return ValidationError{
				Code:    CodeBadTerrain,
				Message: fmt.Sprintf("terrain row %d has %d cells, want %d", y, len(row), l.Width),
			}
		}
		for x, t := range row {
			if !t.Valid() {
				return ValidationError{
					Code:    CodeBadTerrain,
					Message: fmt.Sprintf("unknown terrain %d at %s", t, P(x, y)),
				}
			}
		}
	}
	for _, c := range []Character{White, Black} {
		if s := l.Start(c); !l.InBounds(s) {
			return ValidationError{
				Code:    CodeStartOutOfBounds,
				Message: fmt.Sprintf("%s start %s outside %dx%d grid", c, s, l.Width, l.Height),
			}
		}
	}
	for i, t := range l.Targets {
		if !l.InBounds(t) {
			return ValidationError{
				Code:    CodeTargetOutOfBounds,
				Message: fmt.Sprintf("target %d at %s outside %dx%d grid", i, t, l.Width, l.Height),
			}
		}
	}
	return nil
}
