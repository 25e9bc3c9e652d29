package core

import (
	"fmt"
	"strings"
)

// ASCII map legend shared by level files and test fixtures.
//
//	#  wall          .  void
//	L  light tile    D  dark tile
//	1  P1 start (on a dark tile)
//	2  P2 start (on a light tile)
//	l  target on a light tile
//	d  target on a dark tile
//	x  target over void
const (
	markP1          = '1'
	markP2          = '2'
	markTargetLight = 'l'
	markTargetDark  = 'd'
	markTargetVoid  = 'x'
)

// ParseASCII builds a level from map rows. Rows may be separated by
// spaces, which are ignored, so "# # #" and "###" read the same.
// Markers for starts and targets are optional; a level with no P2 marker
// keeps P2 at the origin.
func ParseASCII(rows []string) (*Level, error) {
	grid := make([][]rune, 0, len(rows))
	for _, r := range rows {
		cells := []rune(strings.ReplaceAll(r, " ", ""))
		if len(cells) == 0 {
			continue
		}
		grid = append(grid, cells)
	}
	if len(grid) == 0 {
		return nil, ValidationError{Code: CodeBadSize, Message: "map has no rows"}
	}

	w := len(grid[0])
	l := NewLevel(w, len(grid), Void)
	var seenP1, seenP2 bool
	for y, row := range grid {
		if len(row) != w {
			return nil, ValidationError{
				Code:    CodeBadTerrain,
				Message: fmt.Sprintf("row %d has %d cells, want %d", y, len(row), w),
			}
		}
		for x, r := range row {
			p := P(x, y)
			switch r {
			case markP1:
				if seenP1 {
					return nil, ValidationError{Code: CodeMalformed, Message: fmt.Sprintf("second P1 start at %s", p)}
				}
				seenP1 = true
				l.Terrain[y][x] = DarkTile
				l.P1Start = p
			case markP2:
				if seenP2 {
					return nil, ValidationError{Code: CodeMalformed, Message: fmt.Sprintf("second P2 start at %s", p)}
				}
				seenP2 = true
				l.Terrain[y][x] = LightTile
				l.P2Start = p
			case markTargetLight:
				l.Terrain[y][x] = LightTile
				l.Targets = append(l.Targets, p)
			case markTargetDark:
				l.Terrain[y][x] = DarkTile
				l.Targets = append(l.Targets, p)
			case markTargetVoid:
				l.Terrain[y][x] = Void
				l.Targets = append(l.Targets, p)
			default:
				t, ok := ParseTerrainChar(r)
				if !ok {
					return nil, ValidationError{
						Code:    CodeBadTerrain,
						Message: fmt.Sprintf("unknown map symbol %q at %s", r, p),
					}
				}
				l.Terrain[y][x] = t
			}
		}
	}
	return l, nil
}

// FormatASCII writes the level back as map rows using the same legend.
// Targets under a start and starts off their own shade do not survive a
// round trip through the legend.
func FormatASCII(l *Level) []string {
	rows := make([]string, l.Height)
	for y := 0; y < l.Height; y++ {
		var sb strings.Builder
		for x := 0; x < l.Width; x++ {
			p := P(x, y)
			t := l.At(p)
			switch {
			case p == l.P1Start:
				sb.WriteRune(markP1)
			case p == l.P2Start:
				sb.WriteRune(markP2)
			case l.TargetIndex(p) >= 0 && t == LightTile:
				sb.WriteRune(markTargetLight)
			case l.TargetIndex(p) >= 0 && t == DarkTile:
				sb.WriteRune(markTargetDark)
			case l.TargetIndex(p) >= 0 && t == Void:
				sb.WriteRune(markTargetVoid)
			default:
				sb.WriteRune(t.Char())
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

// RenderASCII draws the resolved board for debugging and golden tests.
//
// Format:
//   - header line with moves, targets and the active token
//   - resolved terrain using the map legend
//   - tokens drawn over terrain: 'W' for P1, 'B' for P2, '@' when stacked
//   - uncollected targets as '*', collected ones as '+'
func RenderASCII(l *Level, s State) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Moves: %d | Targets: %d/%d | Active: %s\n",
		s.Moves, s.CollectedCount(), len(l.Targets), s.Active))

	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			sb.WriteRune(cellRune(l, &s, P(x, y)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func cellRune(l *Level, s *State, p Pos) rune {
	switch {
	case s.P1 == p && s.P2 == p:
		return '@'
	case s.P1 == p:
		return 'W'
	case s.P2 == p:
		return 'B'
	}
	if i := l.TargetIndex(p); i >= 0 {
		if i < len(s.Collected) && s.Collected[i] {
			return '+'
		}
		return '*'
	}
	return EffectiveAt(l, s, p).Char()
}
