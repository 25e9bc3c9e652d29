package formats

import "github.com/vovakirdan/tui-duality/internal/games/duality/core"

// ParseJSON parses a level in the JSON exchange format. The format has no
// id or name; the loader derives them from the file name.
func ParseJSON(data []byte) (Level, error) {
	l, err := core.UnmarshalLevel(data)
	if err != nil {
		return Level{}, err
	}
	return Level{Data: l}, nil
}
