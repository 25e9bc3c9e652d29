package core

import "fmt"

// Validation error codes.
const (
	CodeBadSize           = "BAD_SIZE"
	CodeBadTerrain        = "BAD_TERRAIN"
	CodeStartOutOfBounds  = "START_OUT_OF_BOUNDS"
	CodeTargetOutOfBounds = "TARGET_OUT_OF_BOUNDS"
	CodeMissingField      = "MISSING_FIELD"
	CodeMalformed         = "MALFORMED"
	CodeOutOfBounds       = "OUT_OF_BOUNDS"
	CodeStartNeedsDark    = "START_NEEDS_DARK"
	CodeStartNeedsLight   = "START_NEEDS_LIGHT"
	CodeTargetOnWall      = "TARGET_ON_WALL"
	CodeNotSolvable       = "NOT_SOLVABLE"
)

// ValidationError contains details about a rejected level or edit.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Lint reports soft problems that do not stop a level from loading but
// make it unplayable as intended. The result is empty for a sound level.
func Lint(l *Level) []string {
	var notes []string
	if l.At(l.P1Start) != DarkTile {
		notes = append(notes, fmt.Sprintf("P1 start %s is on %s, not DarkTile", l.P1Start, l.At(l.P1Start)))
	}
	if l.At(l.P2Start) != LightTile {
		notes = append(notes, fmt.Sprintf("P2 start %s is on %s, not LightTile", l.P2Start, l.At(l.P2Start)))
	}
	if len(l.Targets) == 0 {
		notes = append(notes, "level has no targets and can never be cleared")
	}
	seen := make(map[Pos]bool, len(l.Targets))
	for i, t := range l.Targets {
		switch l.At(t) {
		case Wall:
			notes = append(notes, fmt.Sprintf("target %d at %s is on a wall", i, t))
		case Void:
			notes = append(notes, fmt.Sprintf("target %d at %s is over the void", i, t))
		}
		if seen[t] {
			notes = append(notes, fmt.Sprintf("target %d at %s duplicates another target", i, t))
		}
		seen[t] = true
	}
	return notes
}
