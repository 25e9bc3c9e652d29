package core

import (
	"encoding/json"
	"fmt"
)

// wireLevel mirrors the exchange format with pointer fields so that absent
// keys can be told apart from zero values.
type wireLevel struct {
	Width   *int    `json:"width"`
	Height  *int    `json:"height"`
	Terrain [][]int `json:"terrain"`
	P1Start *Pos    `json:"p1Start"`
	P2Start *Pos    `json:"p2Start"`
	Targets []Pos   `json:"targets"`
}

// MarshalLevel encodes a level in the exchange format: a direct dump of
// width, height, terrain ordinals, both starts and the target list.
func MarshalLevel(l *Level) ([]byte, error) {
	targets := l.Targets
	if targets == nil {
		targets = []Pos{}
	}
	terrain := make([][]int, len(l.Terrain))
	for y, row := range l.Terrain {
		terrain[y] = make([]int, len(row))
		for x, t := range row {
			terrain[y][x] = int(t)
		}
	}
	data, err := json.Marshal(wireLevel{
		Width:   &l.Width,
		Height:  &l.Height,
		Terrain: terrain,
		P1Start: &l.P1Start,
		P2Start: &l.P2Start,
		Targets: targets,
	})
	if err != nil {
		return nil, fmt.Errorf("encode level: %w", err)
	}
	return data, nil
}

// UnmarshalLevel decodes and validates a level in the exchange format.
// width, height, terrain and p1Start are required; a missing p2Start
// defaults to the origin and missing targets to none. Nothing is returned
// unless the whole payload is acceptable.
func UnmarshalLevel(data []byte) (*Level, error) {
	var w wireLevel
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, ValidationError{Code: CodeMalformed, Message: err.Error()}
	}

	switch {
	case w.Width == nil || *w.Width <= 0:
		return nil, ValidationError{Code: CodeMissingField, Message: "width must be present and positive"}
	case w.Height == nil || *w.Height <= 0:
		return nil, ValidationError{Code: CodeMissingField, Message: "height must be present and positive"}
	case w.Terrain == nil:
		return nil, ValidationError{Code: CodeMissingField, Message: "terrain is required"}
	case w.P1Start == nil:
		return nil, ValidationError{Code: CodeMissingField, Message: "p1Start is required"}
	}

	l := &Level{
		Width:   *w.Width,
		Height:  *w.Height,
		Terrain: make([][]Terrain, len(w.Terrain)),
		P1Start: *w.P1Start,
		Targets: w.Targets,
	}
	if w.P2Start != nil {
		l.P2Start = *w.P2Start
	}
	if l.Targets == nil {
		l.Targets = []Pos{}
	}
	for y, row := range w.Terrain {
		l.Terrain[y] = make([]Terrain, len(row))
		for x, v := range row {
			if v < 0 || v > int(DarkTile) {
				return nil, ValidationError{
					Code:    CodeBadTerrain,
					Message: fmt.Sprintf("unknown terrain %d at %s", v, P(x, y)),
				}
			}
			l.Terrain[y][x] = Terrain(v)
		}
	}

	if err := l.CheckStructure(); err != nil {
		return nil, err
	}
	return l, nil
}

// MarshalJSON encodes the level in the exchange format.
func (l *Level) MarshalJSON() ([]byte, error) {
	return MarshalLevel(l)
}

// UnmarshalJSON decodes and validates a level in the exchange format.
func (l *Level) UnmarshalJSON(data []byte) error {
	dec, err := UnmarshalLevel(data)
	if err != nil {
		return err
	}
	*l = *dec
	return nil
}
