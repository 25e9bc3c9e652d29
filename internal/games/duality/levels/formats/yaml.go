// Package formats provides pluggable level file format parsers.
package formats

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
)

// YAMLLevel represents the YAML structure for a level file.
// The map is given as ASCII rows (see core.ParseASCII); p1, p2 and
// targets, when present, override the markers found in the rows.
type YAMLLevel struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Order    int               `yaml:"order,omitempty"`
	Rows     []string          `yaml:"rows"`
	P1       *core.Pos         `yaml:"p1,omitempty"`
	P2       *core.Pos         `yaml:"p2,omitempty"`
	Targets  []core.Pos        `yaml:"targets,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// Level represents a parsed level ready for use.
type Level struct {
	ID       string
	Name     string
	Order    int
	Data     *core.Level
	Metadata map[string]string
}

// ParseYAML parses a YAML level file.
func ParseYAML(data []byte) (Level, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	l, err := core.ParseASCII(yl.Rows)
	if err != nil {
		return Level{}, fmt.Errorf("rows: %w", err)
	}
	if yl.P1 != nil {
		l.P1Start = *yl.P1
	}
	if yl.P2 != nil {
		l.P2Start = *yl.P2
	}
	if yl.Targets != nil {
		l.Targets = yl.Targets
	}
	if err := l.CheckStructure(); err != nil {
		return Level{}, err
	}

	return Level{
		ID:       yl.ID,
		Name:     yl.Name,
		Order:    yl.Order,
		Data:     l,
		Metadata: yl.Metadata,
	}, nil
}

// FormatYAML writes a level as a YAML level file. Starts and targets are
// written explicitly so that nothing is lost to the ASCII legend. The rows
// carry the legend markers whenever they read back to the same level, and
// bare terrain otherwise.
func FormatYAML(lvl Level) ([]byte, error) {
	p1, p2 := lvl.Data.P1Start, lvl.Data.P2Start
	yl := YAMLLevel{
		ID:       lvl.ID,
		Name:     lvl.Name,
		Order:    lvl.Order,
		Rows:     mapRows(lvl.Data),
		P1:       &p1,
		P2:       &p2,
		Targets:  lvl.Data.Targets,
		Metadata: lvl.Metadata,
	}
	if yl.Targets == nil {
		yl.Targets = []core.Pos{}
	}
	out, err := yaml.Marshal(yl)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return out, nil
}

func mapRows(l *core.Level) []string {
	rows := core.FormatASCII(l)
	back, err := core.ParseASCII(rows)
	if err != nil {
		return terrainRows(l)
	}
	back.P1Start, back.P2Start = l.P1Start, l.P2Start
	back.Targets = l.Targets
	if !back.Equal(l) {
		return terrainRows(l)
	}
	return rows
}

// terrainRows writes bare terrain symbols without markers.
func terrainRows(l *core.Level) []string {
	rows := make([]string, l.Height)
	for y := range rows {
		b := make([]rune, l.Width)
		for x := range b {
			b[x] = l.At(core.P(x, y)).Char()
		}
		rows[y] = string(b)
	}
	return rows
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml", ".json"}
}
