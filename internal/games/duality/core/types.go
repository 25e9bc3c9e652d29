// Package core provides the rules of Duality: terrain, the two tokens and
// the transitions between game states.
// This package is UI-agnostic and deterministic.
package core

import "fmt"

// Terrain is the kind of a grid cell. The ordinals are part of the level
// exchange format and must not change.
type Terrain uint8

const (
	Void Terrain = iota
	Wall
	LightTile
	DarkTile
)

// String returns the name of the terrain kind.
func (t Terrain) String() string {
	switch t {
	case Void:
		return "Void"
	case Wall:
		return "Wall"
	case LightTile:
		return "LightTile"
	case DarkTile:
		return "DarkTile"
	default:
		return fmt.Sprintf("Terrain(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the four known kinds.
func (t Terrain) Valid() bool {
	return t <= DarkTile
}

// Char returns the ASCII map symbol for the terrain.
func (t Terrain) Char() rune {
	switch t {
	case Wall:
		return '#'
	case LightTile:
		return 'L'
	case DarkTile:
		return 'D'
	default:
		return '.'
	}
}

// ParseTerrainChar maps an ASCII map symbol back to a terrain kind.
func ParseTerrainChar(r rune) (Terrain, bool) {
	switch r {
	case '#', 'W':
		return Wall, true
	case 'L':
		return LightTile, true
	case 'D':
		return DarkTile, true
	case '.', '_', ' ':
		return Void, true
	default:
		return Void, false
	}
}

// Character identifies one of the two tokens.
type Character uint8

const (
	White Character = iota // P1, walks on dark
	Black                  // P2, walks on light
)

// String returns the exchange name of the token.
func (c Character) String() string {
	if c == Black {
		return "P2_Black"
	}
	return "P1_White"
}

// Other returns the partner token.
func (c Character) Other() Character {
	if c == White {
		return Black
	}
	return White
}

// Walks returns the tile kind this token may step on.
func (c Character) Walks() Terrain {
	if c == White {
		return DarkTile
	}
	return LightTile
}

// Becomes returns the tile kind this token turns into while inactive.
// It is always the tile its partner walks on.
func (c Character) Becomes() Terrain {
	return c.Other().Walks()
}

// Dir is one of the four cardinal directions.
type Dir uint8

const (
	DirUp Dir = iota
	DirRight
	DirDown
	DirLeft
)

// Dirs lists the cardinal directions in clockwise order.
var Dirs = [4]Dir{DirUp, DirRight, DirDown, DirLeft}

// String returns the lowercase direction name.
func (d Dir) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirRight:
		return "right"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	default:
		return "unknown"
	}
}

// Delta returns the (dx, dy) offset for one step in this direction.
// Up decreases Y (screen coordinates).
func (d Dir) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirRight:
		return 1, 0
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	default:
		return 0, 0
	}
}

// DirFromDelta returns the direction for a unit cardinal vector.
func DirFromDelta(dx, dy int) (Dir, bool) {
	switch {
	case dx == 0 && dy == -1:
		return DirUp, true
	case dx == 1 && dy == 0:
		return DirRight, true
	case dx == 0 && dy == 1:
		return DirDown, true
	case dx == -1 && dy == 0:
		return DirLeft, true
	default:
		return 0, false
	}
}

// ParseDir parses a direction name.
func ParseDir(s string) (Dir, bool) {
	for _, d := range Dirs {
		if d.String() == s {
			return d, true
		}
	}
	return 0, false
}

// Pos is a grid coordinate. X grows to the right, Y grows downward.
type Pos struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// P is a convenience constructor for Pos.
func P(x, y int) Pos {
	return Pos{X: x, Y: y}
}

// String returns "(x,y)".
func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns p offset by (dx, dy).
func (p Pos) Add(dx, dy int) Pos {
	return Pos{X: p.X + dx, Y: p.Y + dy}
}

// Step returns the neighbour of p in direction d.
func (p Pos) Step(d Dir) Pos {
	dx, dy := d.Delta()
	return p.Add(dx, dy)
}
