package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-duality/internal/core"
)

type colorPair struct {
	fg, bg core.Color
}

var (
	stylesMu sync.Mutex
	styles   = map[colorPair]lipgloss.Style{}
)

// styleFor returns the lipgloss style drawing a cell with the given colors.
func styleFor(fg, bg core.Color) lipgloss.Style {
	key := colorPair{fg, bg}

	stylesMu.Lock()
	defer stylesMu.Unlock()

	if s, ok := styles[key]; ok {
		return s
	}
	s := lipgloss.NewStyle()
	if c := fg.ANSI(); c != "" {
		s = s.Foreground(lipgloss.Color(c))
	}
	if c := bg.ANSI(); c != "" {
		s = s.Background(lipgloss.Color(c))
	}
	styles[key] = s
	return s
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same colors to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			fg, bg := cell.Fg, cell.Bg

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Fg != fg || cell.Bg != bg {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			if fg == core.ColorDefault && bg == core.ColorDefault {
				sb.WriteString(run.String())
				continue
			}
			sb.WriteString(styleFor(fg, bg).Render(run.String()))
		}
	}
	return sb.String()
}
