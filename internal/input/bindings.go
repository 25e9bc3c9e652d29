package input

import (
	"fmt"
	"sort"
)

// DefaultKeys maps key names to command names. Key names follow Bubble Tea
// (tea.KeyMsg.String()) so terminal and browser clients share the table.
var DefaultKeys = map[string]string{
	"up": "up", "w": "up", "W": "up",
	"down": "down", "s": "down", "S": "down",
	"left": "left", "a": "left", "A": "left",
	"right": "right", "d": "right", "D": "right",
	" ": "switch", "space": "switch", "enter": "switch", "e": "switch", "E": "switch",
	"r": "reset", "R": "reset",
}

// Bindings is a validated, read-only key table.
type Bindings struct {
	keys map[string]Command
}

// NewBindings validates a key table. Every entry must name a known
// command other than start.
func NewBindings(table map[string]string) (Bindings, error) {
	b := Bindings{keys: make(map[string]Command, len(table))}
	for key, name := range table {
		if key == "" {
			return Bindings{}, fmt.Errorf("bindings: empty key for %q", name)
		}
		cmd, ok := ParseCommand(name)
		if !ok || cmd.Kind == KindStart {
			return Bindings{}, fmt.Errorf("bindings: key %q bound to unknown command %q", key, name)
		}
		b.keys[key] = cmd
	}
	return b, nil
}

// MustBindings is NewBindings for tables known to be valid.
func MustBindings(table map[string]string) Bindings {
	b, err := NewBindings(table)
	if err != nil {
		panic(err)
	}
	return b
}

// Lookup returns the command bound to key.
func (b Bindings) Lookup(key string) (Command, bool) {
	c, ok := b.keys[key]
	return c, ok
}

// KeysFor lists the keys bound to a command name, sorted.
func (b Bindings) KeysFor(name string) []string {
	var keys []string
	for k, c := range b.keys {
		if c.String() == name {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
