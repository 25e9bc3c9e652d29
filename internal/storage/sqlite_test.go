package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tui-duality/internal/coop"
	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.SaveRun("first-light", 28, "me"); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	best, ok, err := store.BestMoves("first-light")
	if err != nil || !ok || best != 28 {
		t.Errorf("BestMoves() = %d, %v, %v", best, ok, err)
	}
}

func TestSaveAndRankRuns(t *testing.T) {
	store := openTemp(t)

	for _, m := range []int{40, 28, 33} {
		if _, err := store.SaveRun("first-light", m, "solo"); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}
	if _, err := store.SaveRun("bridge", 12, "solo"); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	runs, err := store.BestRuns("first-light", 10)
	if err != nil {
		t.Fatalf("BestRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	want := []int{28, 33, 40}
	for i, r := range runs {
		if r.Moves != want[i] {
			t.Errorf("runs[%d].Moves = %d, expected %d", i, r.Moves, want[i])
		}
		if r.RunID == "" {
			t.Errorf("runs[%d] has no run id", i)
		}
	}

	limited, err := store.BestRuns("first-light", 1)
	if err != nil {
		t.Fatalf("BestRuns() failed: %v", err)
	}
	if len(limited) != 1 || limited[0].Moves != 28 {
		t.Errorf("limit not applied: %+v", limited)
	}
}

func TestSaveRunRejectsBadInput(t *testing.T) {
	store := openTemp(t)

	if _, err := store.SaveRun("", 3, "x"); err == nil {
		t.Error("expected error for empty level id")
	}
	if _, err := store.SaveRun("bridge", -1, "x"); err == nil {
		t.Error("expected error for negative moves")
	}
}

func TestBestMovesEmpty(t *testing.T) {
	store := openTemp(t)

	best, ok, err := store.BestMoves("nothing")
	if err != nil {
		t.Fatalf("BestMoves() failed: %v", err)
	}
	if ok || best != 0 {
		t.Errorf("expected no record, got %d, %v", best, ok)
	}
}

func TestLevelStats(t *testing.T) {
	store := openTemp(t)

	store.SaveRun("bridge", 12, "a")
	store.SaveRun("bridge", 20, "b")
	store.SaveRun("detour", 19, "a")

	stats, err := store.LevelStats("bridge")
	if err != nil {
		t.Fatalf("LevelStats() failed: %v", err)
	}
	if stats.Clears != 2 || stats.BestMoves != 12 || stats.AvgMoves != 16 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set")
	}

	empty, err := store.LevelStats("nothing")
	if err != nil {
		t.Fatalf("LevelStats() failed: %v", err)
	}
	if empty.Clears != 0 || empty.BestMoves != 0 {
		t.Errorf("unexpected empty stats %+v", empty)
	}

	all, err := store.AllLevelStats()
	if err != nil {
		t.Fatalf("AllLevelStats() failed: %v", err)
	}
	if len(all) != 2 || all["detour"].BestMoves != 19 {
		t.Errorf("unexpected all stats %+v", all)
	}
}

func TestClearRuns(t *testing.T) {
	store := openTemp(t)

	store.SaveRun("bridge", 12, "a")
	if err := store.ClearRuns("bridge"); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}
	if _, ok, _ := store.BestMoves("bridge"); ok {
		t.Error("runs should be gone")
	}
}

func TestSaveRoomRun(t *testing.T) {
	store := openTemp(t)

	err := store.SaveRoomRun(coop.RunResult{
		RoomCode:     "ABCD2345",
		LevelID:      "first-light",
		Moves:        30,
		Players:      "alice+bob",
		DurationSecs: 95,
	})
	if err != nil {
		t.Fatalf("SaveRoomRun() failed: %v", err)
	}

	runs, err := store.BestRuns("first-light", 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("BestRuns() = %v, %v", runs, err)
	}
	if runs[0].Room != "ABCD2345" || runs[0].Player != "alice+bob" || runs[0].Duration != 95 {
		t.Errorf("unexpected run %+v", runs[0])
	}
}

func TestCustomLevels(t *testing.T) {
	store := openTemp(t)
	lvl := core.InitialLevel()

	if err := store.SaveLevel("mine", "My Level", lvl); err != nil {
		t.Fatalf("SaveLevel() failed: %v", err)
	}

	got, err := store.LoadLevel("mine")
	if err != nil || got == nil {
		t.Fatalf("LoadLevel() = %v, %v", got, err)
	}
	if got.Name != "My Level" || !got.Data.Equal(lvl) {
		t.Errorf("loaded level differs: %+v", got)
	}

	// Saving again replaces the row.
	lvl2 := core.Resize(lvl, 8, 8)
	if err := store.SaveLevel("mine", "Bigger", lvl2); err != nil {
		t.Fatalf("SaveLevel() overwrite failed: %v", err)
	}
	got, _ = store.LoadLevel("mine")
	if got.Name != "Bigger" || got.Data.Width != 8 {
		t.Errorf("overwrite not applied: %+v", got)
	}

	store.SaveLevel("another", "", core.LevelTwo())
	list, err := store.ListLevels()
	if err != nil {
		t.Fatalf("ListLevels() failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "another" || list[1].ID != "mine" {
		t.Errorf("unexpected list %+v", list)
	}

	deleted, err := store.DeleteLevel("mine")
	if err != nil || !deleted {
		t.Fatalf("DeleteLevel() = %v, %v", deleted, err)
	}
	deleted, _ = store.DeleteLevel("mine")
	if deleted {
		t.Error("second delete should report nothing removed")
	}

	missing, err := store.LoadLevel("mine")
	if err != nil || missing != nil {
		t.Errorf("LoadLevel(missing) = %v, %v", missing, err)
	}
}

func TestSaveLevelRejectsBrokenLevel(t *testing.T) {
	store := openTemp(t)

	bad := core.InitialLevel()
	bad.P1Start = core.P(50, 50)
	if err := store.SaveLevel("bad", "", bad); err == nil {
		t.Error("expected error for start out of bounds")
	}
	if err := store.SaveLevel("", "", core.InitialLevel()); err == nil {
		t.Error("expected error for empty id")
	}
}
