package core

import "fmt"

// Editor size limits. The rules accept any positive size; the editor
// keeps levels within these bounds.
const (
	MinEditSize = 4
	MaxEditSize = 20
)

// Tool is an editor brush.
type Tool uint8

const (
	ToolWall Tool = iota
	ToolLight
	ToolDark
	ToolVoid
	ToolP1
	ToolP2
	ToolTarget
)

// Tools lists every brush in palette order.
var Tools = []Tool{ToolWall, ToolLight, ToolDark, ToolVoid, ToolP1, ToolP2, ToolTarget}

// String returns the brush name.
func (t Tool) String() string {
	switch t {
	case ToolWall:
		return "wall"
	case ToolLight:
		return "light"
	case ToolDark:
		return "dark"
	case ToolVoid:
		return "void"
	case ToolP1:
		return "p1"
	case ToolP2:
		return "p2"
	case ToolTarget:
		return "target"
	default:
		return "unknown"
	}
}

// ParseTool parses a brush name. "eraser" is accepted for void.
func ParseTool(s string) (Tool, bool) {
	if s == "eraser" {
		return ToolVoid, true
	}
	for _, t := range Tools {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Paint overwrites the terrain at p. Painting never moves starts or
// targets.
func Paint(l *Level, p Pos, t Terrain) (*Level, error) {
	if err := editBounds(l, p); err != nil {
		return nil, err
	}
	if !t.Valid() {
		return nil, ValidationError{Code: CodeBadTerrain, Message: fmt.Sprintf("unknown terrain %d", t)}
	}
	n := l.Clone()
	n.Terrain[p.Y][p.X] = t
	return n, nil
}

// PlaceStart moves the start of token c to p. P1 must start on a dark
// tile and P2 on a light one.
func PlaceStart(l *Level, c Character, p Pos) (*Level, error) {
	if err := editBounds(l, p); err != nil {
		return nil, err
	}
	if got := l.At(p); got != c.Walks() {
		code := CodeStartNeedsDark
		if c == Black {
			code = CodeStartNeedsLight
		}
		return nil, ValidationError{
			Code:    code,
			Message: fmt.Sprintf("%s cannot start on %s at %s", c, got, p),
		}
	}
	n := l.Clone()
	if c == Black {
		n.P2Start = p
	} else {
		n.P1Start = p
	}
	return n, nil
}

// ToggleTarget removes the target at p if there is one, otherwise appends
// a new target there. Targets cannot sit on walls.
func ToggleTarget(l *Level, p Pos) (*Level, error) {
	if err := editBounds(l, p); err != nil {
		return nil, err
	}
	if l.At(p) == Wall {
		return nil, ValidationError{Code: CodeTargetOnWall, Message: fmt.Sprintf("no target on a wall at %s", p)}
	}
	n := l.Clone()
	if i := n.TargetIndex(p); i >= 0 {
		n.Targets = append(n.Targets[:i], n.Targets[i+1:]...)
	} else {
		n.Targets = append(n.Targets, p)
	}
	return n, nil
}

// Apply uses brush t at p.
func Apply(l *Level, t Tool, p Pos) (*Level, error) {
	switch t {
	case ToolWall:
		return Paint(l, p, Wall)
	case ToolLight:
		return Paint(l, p, LightTile)
	case ToolDark:
		return Paint(l, p, DarkTile)
	case ToolVoid:
		return Paint(l, p, Void)
	case ToolP1:
		return PlaceStart(l, White, p)
	case ToolP2:
		return PlaceStart(l, Black, p)
	case ToolTarget:
		return ToggleTarget(l, p)
	default:
		return nil, ValidationError{Code: CodeMalformed, Message: fmt.Sprintf("unknown tool %d", t)}
	}
}

// Resize returns a copy of l resized to w x h, each clamped to the editor
// limits. Overlapping cells are kept, new cells are Wall, starts are
// clamped into the grid and targets that fall outside are dropped.
func Resize(l *Level, w, h int) *Level {
	w = clamp(w, MinEditSize, MaxEditSize)
	h = clamp(h, MinEditSize, MaxEditSize)

	n := NewLevel(w, h, Wall)
	for y := 0; y < h && y < l.Height && y < len(l.Terrain); y++ {
		for x := 0; x < w && x < l.Width && x < len(l.Terrain[y]); x++ {
			n.Terrain[y][x] = l.Terrain[y][x]
		}
	}
	n.P1Start = P(min(l.P1Start.X, w-1), min(l.P1Start.Y, h-1))
	n.P2Start = P(min(l.P2Start.X, w-1), min(l.P2Start.Y, h-1))
	for _, t := range l.Targets {
		if t.X < w && t.Y < h {
			n.Targets = append(n.Targets, t)
		}
	}
	return n
}

func editBounds(l *Level, p Pos) error {
	if !l.InBounds(p) {
		return ValidationError{
			Code:    CodeOutOfBounds,
			Message: fmt.Sprintf("%s outside %dx%d grid", p, l.Width, l.Height),
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
