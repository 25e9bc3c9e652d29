// Package levels provides level loading for Duality.
// This package depends on core but core does not depend on levels.
package levels

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
	"github.com/vovakirdan/tui-duality/internal/games/duality/levels/formats"
)

// Level represents a complete level definition.
type Level struct {
	ID       string
	Name     string
	Order    int
	Data     *core.Level
	Metadata map[string]string
	FilePath string
}

// Title returns the display name, falling back to the ID.
func (l Level) Title() string {
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}

// NewState creates the initial game state for this level.
func (l Level) NewState() core.State {
	return core.NewState(l.Data)
}

// Loader handles loading levels from a directory tree.
type Loader struct {
	Root string
	fsys fs.FS
}

// NewLoader creates a loader reading from a directory on disk.
func NewLoader(root string) *Loader {
	return &Loader{Root: root, fsys: os.DirFS(root)}
}

// NewFSLoader creates a loader reading from dir inside fsys.
func NewFSLoader(fsys fs.FS, dir string) *Loader {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		sub = fsys
	}
	return &Loader{Root: dir, fsys: sub}
}

// LoadAll recursively scans and loads all level files.
// Files that fail to parse are skipped. Levels are sorted by Order, then
// by ID, for deterministic ordering.
func (l *Loader) LoadAll() ([]Level, error) {
	var levels []Level

	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedExtension(strings.ToLower(path.Ext(p))) {
			return nil
		}

		level, err := l.load(p)
		if err != nil {
			// Skip invalid files
			return nil
		}
		levels = append(levels, level)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	Sort(levels)
	return levels, nil
}

// LoadFile loads a single level file from disk, independent of Root.
func (l *Loader) LoadFile(file string) (Level, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", file, err)
	}
	return parseFile(data, file)
}

// LoadByID loads a specific level by ID.
func (l *Loader) LoadByID(id string) (Level, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return Level{}, err
	}

	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}

	return Level{}, fmt.Errorf("level not found: %s", id)
}

// ListIDs returns all level IDs in load order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, nil
}

func (l *Loader) load(p string) (Level, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", p, err)
	}
	lvl, err := parseFile(data, p)
	if err != nil {
		return Level{}, err
	}
	lvl.FilePath = path.Join(filepath.ToSlash(l.Root), p)
	return lvl, nil
}

func parseFile(data []byte, name string) (Level, error) {
	ext := strings.ToLower(filepath.Ext(name))
	parsed, err := parseByExtension(data, ext)
	if err != nil {
		return Level{}, fmt.Errorf("parsing file %s: %w", name, err)
	}

	id := parsed.ID
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return Level{
		ID:       id,
		Name:     parsed.Name,
		Order:    parsed.Order,
		Data:     parsed.Data,
		Metadata: parsed.Metadata,
		FilePath: name,
	}, nil
}

// Sort orders levels by Order, then by ID. Levels without an order come
// after ordered ones.
func Sort(levels []Level) {
	sort.SliceStable(levels, func(i, j int) bool {
		oi, oj := levels[i].Order, levels[j].Order
		if (oi == 0) != (oj == 0) {
			return oj == 0
		}
		if oi != oj {
			return oi < oj
		}
		return levels[i].ID < levels[j].ID
	})
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// parseByExtension routes to the correct parser.
func parseByExtension(data []byte, ext string) (formats.Level, error) {
	switch ext {
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	case ".json":
		return formats.ParseJSON(data)
	default:
		return formats.Level{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}

// Encode serializes a level in the format named by ext: the JSON exchange
// format for ".json", a YAML level file otherwise.
func Encode(lvl Level, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return core.MarshalLevel(lvl.Data)
	case ".yaml", ".yml", "":
		return formats.FormatYAML(formats.Level{
			ID:       lvl.ID,
			Name:     lvl.Name,
			Order:    lvl.Order,
			Data:     lvl.Data,
			Metadata: lvl.Metadata,
		})
	default:
		return nil, fmt.Errorf("unsupported extension: %s", ext)
	}
}

// WriteFile saves a level to disk, picking the format from the file
// extension.
func WriteFile(file string, lvl Level) error {
	data, err := Encode(lvl, filepath.Ext(file))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("writing file %s: %w", file, err)
	}
	return nil
}
