// Package storage provides SQLite-based persistence for cleared runs and
// custom levels.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-duality/internal/coop"
	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Run is one cleared level.
type Run struct {
	ID        int64
	RunID     string
	LevelID   string
	Moves     int
	Player    string
	Room      string // co-op room code, empty for solo runs
	Duration  int    // seconds, 0 when unknown
	CreatedAt time.Time
}

// StoredLevel is a custom level kept in the database.
type StoredLevel struct {
	ID        string
	Name      string
	Data      *core.Level
	UpdatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			level_id TEXT NOT NULL,
			moves INTEGER NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			room_code TEXT NOT NULL DEFAULT '',
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_level_id ON runs(level_id);
		CREATE INDEX IF NOT EXISTS idx_runs_best ON runs(level_id, moves ASC);

		CREATE TABLE IF NOT EXISTS levels (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			data TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a cleared level. Returns the generated run ID.
func (s *Store) SaveRun(levelID string, moves int, player string) (string, error) {
	return s.insertRun(Run{LevelID: levelID, Moves: moves, Player: player})
}

func (s *Store) insertRun(r Run) (string, error) {
	if r.LevelID == "" {
		return "", errors.New("storage: run has no level id")
	}
	if r.Moves < 0 {
		return "", fmt.Errorf("storage: negative move count %d", r.Moves)
	}
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, level_id, moves, player, room_code, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.RunID, r.LevelID, r.Moves, r.Player, r.Room, r.Duration,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}
	return r.RunID, nil
}

// SaveRoomRun implements coop.RunSaver.
// This adapter allows the coordinator to save runs without direct storage dependency.
func (s *Store) SaveRoomRun(data coop.RunResult) error {
	_, err := s.insertRun(Run{
		LevelID:  data.LevelID,
		Moves:    data.Moves,
		Player:   data.Players,
		Room:     data.RoomCode,
		Duration: data.DurationSecs,
	})
	return err
}

// Ensure Store implements RunSaver
var _ coop.RunSaver = (*Store)(nil)

// BestRuns retrieves the N runs with the fewest moves for a level.
// Ties go to the earlier run.
func (s *Store) BestRuns(levelID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, level_id, moves, player, room_code, duration_secs, created_at
		 FROM runs
		 WHERE level_id = ?
		 ORDER BY moves ASC, id ASC
		 LIMIT ?`,
		levelID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt any
		if err := rows.Scan(&r.ID, &r.RunID, &r.LevelID, &r.Moves, &r.Player, &r.Room, &r.Duration, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// BestMoves returns the lowest move count recorded for a level.
// ok is false if the level has never been cleared.
func (s *Store) BestMoves(levelID string) (best int, ok bool, err error) {
	var moves sql.NullInt64
	err = s.db.QueryRow(
		"SELECT MIN(moves) FROM runs WHERE level_id = ?",
		levelID,
	).Scan(&moves)
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot query best moves: %w", err)
	}
	if !moves.Valid {
		return 0, false, nil
	}
	return int(moves.Int64), true, nil
}

// ClearRuns deletes all runs for a level.
func (s *Store) ClearRuns(levelID string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE level_id = ?", levelID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// LevelStats contains aggregated statistics for a level.
type LevelStats struct {
	LevelID    string
	Clears     int
	BestMoves  int
	AvgMoves   float64
	LastPlayed time.Time
}

// LevelStats retrieves aggregated statistics for a specific level.
func (s *Store) LevelStats(levelID string) (*LevelStats, error) {
	stats := &LevelStats{LevelID: levelID}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MIN(moves), 0), COALESCE(AVG(moves), 0), MAX(created_at)
		 FROM runs WHERE level_id = ?`,
		levelID,
	).Scan(&stats.Clears, &stats.BestMoves, &stats.AvgMoves, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get level stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// AllLevelStats retrieves statistics for every level that has been cleared.
func (s *Store) AllLevelStats() (map[string]*LevelStats, error) {
	rows, err := s.db.Query(
		`SELECT level_id, COUNT(*), MIN(moves), AVG(moves), MAX(created_at)
		 FROM runs
		 GROUP BY level_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all level stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*LevelStats)
	for rows.Next() {
		var ls LevelStats
		var lastPlayed any
		if err := rows.Scan(&ls.LevelID, &ls.Clears, &ls.BestMoves, &ls.AvgMoves, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		ls.LastPlayed = parseTime(lastPlayed)
		stats[ls.LevelID] = &ls
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// SaveLevel inserts or replaces a custom level. The level must pass the
// structural checks of the exchange format.
func (s *Store) SaveLevel(id, name string, l *core.Level) error {
	if id == "" {
		return errors.New("storage: level has no id")
	}
	data, err := core.MarshalLevel(l)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if _, err := core.UnmarshalLevel(data); err != nil {
		return fmt.Errorf("storage: level %s: %w", id, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO levels (id, name, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		id, name, string(data),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save level: %w", err)
	}
	return nil
}

// LoadLevel retrieves a custom level by ID.
// Returns nil, nil if no such level exists.
func (s *Store) LoadLevel(id string) (*StoredLevel, error) {
	var (
		lvl       StoredLevel
		data      string
		updatedAt any
	)
	err := s.db.QueryRow(
		"SELECT id, name, data, updated_at FROM levels WHERE id = ?",
		id,
	).Scan(&lvl.ID, &lvl.Name, &data, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query level: %w", err)
	}

	if lvl.Data, err = core.UnmarshalLevel([]byte(data)); err != nil {
		return nil, fmt.Errorf("storage: level %s is corrupt: %w", id, err)
	}
	lvl.UpdatedAt = parseTime(updatedAt)
	return &lvl, nil
}

// ListLevels retrieves every custom level ordered by ID.
// Rows that no longer decode are skipped.
func (s *Store) ListLevels() ([]StoredLevel, error) {
	rows, err := s.db.Query("SELECT id, name, data, updated_at FROM levels ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query levels: %w", err)
	}
	defer rows.Close()

	var out []StoredLevel
	for rows.Next() {
		var (
			lvl       StoredLevel
			data      string
			updatedAt any
		)
		if err := rows.Scan(&lvl.ID, &lvl.Name, &data, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if lvl.Data, err = core.UnmarshalLevel([]byte(data)); err != nil {
			continue
		}
		lvl.UpdatedAt = parseTime(updatedAt)
		out = append(out, lvl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// DeleteLevel removes a custom level. It reports whether a row was deleted.
func (s *Store) DeleteLevel(id string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM levels WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("storage: cannot delete level: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot count deleted rows: %w", err)
	}
	return n > 0, nil
}

// parseTime handles both time.Time and string datetime values.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
