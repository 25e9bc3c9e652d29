package registry

import (
	"testing"

	dcore "github.com/vovakirdan/tui-duality/internal/games/duality/core"
)

func reset() {
	mu.Lock()
	defer mu.Unlock()
	factories = make(map[string]LevelFactory)
	infos = make(map[string]LevelInfo)
}

func TestRegisterListOrder(t *testing.T) {
	reset()
	t.Cleanup(reset)

	Register(LevelInfo{ID: "two", Order: 2, Source: SourceCampaign}, dcore.LevelTwo)
	Register(LevelInfo{ID: "one", Order: 1, Source: SourceCampaign}, dcore.InitialLevel)
	if err := Add(LevelInfo{ID: "aaa", Source: SourceCustom}, dcore.InitialLevel); err != nil {
		t.Fatal(err)
	}

	got := List()
	want := []string{"one", "two", "aaa"}
	if len(got) != len(want) {
		t.Fatalf("expected %d levels, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i].ID)
		}
	}
	if got[2].Title != "aaa" {
		t.Errorf("title should default to ID, got %q", got[2].Title)
	}

	next, ok := Next("two")
	if !ok || next.ID != "aaa" {
		t.Errorf("Next(two) = %v, %v", next, ok)
	}
	if _, ok := Next("aaa"); ok {
		t.Error("last level should have no next")
	}
}

func TestAddDuplicate(t *testing.T) {
	reset()
	t.Cleanup(reset)

	Register(LevelInfo{ID: "one", Source: SourceCampaign}, dcore.InitialLevel)
	if err := Add(LevelInfo{ID: "one"}, dcore.LevelTwo); err == nil {
		t.Error("expected duplicate error")
	}

	defer func() {
		if recover() == nil {
			t.Error("Register should panic on duplicate")
		}
	}()
	Register(LevelInfo{ID: "one"}, dcore.LevelTwo)
}

func TestLevelReturnsCopies(t *testing.T) {
	reset()
	t.Cleanup(reset)

	Register(LevelInfo{ID: "one"}, dcore.InitialLevel)
	a, err := Level("one")
	if err != nil {
		t.Fatal(err)
	}
	a.Terrain[1][1] = dcore.Wall

	b, _ := Level("one")
	if b.Terrain[1][1] != dcore.DarkTile {
		t.Error("levels must not share terrain")
	}
	if _, err := Level("nope"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestReplaceAndRemove(t *testing.T) {
	reset()
	t.Cleanup(reset)

	Register(LevelInfo{ID: "one", Source: SourceCampaign}, dcore.InitialLevel)
	if err := Replace(LevelInfo{ID: "one", Source: SourceCustom}, dcore.LevelTwo); err == nil {
		t.Error("campaign level should not be replaceable")
	}
	if Remove("one") {
		t.Error("campaign level should not be removable")
	}

	if err := Replace(LevelInfo{ID: "mine", Source: SourceCustom}, dcore.InitialLevel); err != nil {
		t.Fatal(err)
	}
	if err := Replace(LevelInfo{ID: "mine", Title: "Mine", Source: SourceCustom}, dcore.LevelTwo); err != nil {
		t.Fatal(err)
	}
	info, _ := Info("mine")
	if info.Title != "Mine" {
		t.Errorf("expected replaced title, got %q", info.Title)
	}
	l, _ := Level("mine")
	if l.Width != 9 {
		t.Errorf("expected replaced level, got width %d", l.Width)
	}
	if !Remove("mine") || Exists("mine") {
		t.Error("custom level should be removable")
	}
}

func TestNextSkipsUnplayableLevels(t *testing.T) {
	reset()
	t.Cleanup(reset)

	// LevelTwo keeps its only target over the void.
	Register(LevelInfo{ID: "one", Order: 1, Source: SourceCampaign}, dcore.InitialLevel)
	Register(LevelInfo{ID: "two", Order: 2, Source: SourceCampaign}, dcore.LevelTwo)
	Register(LevelInfo{ID: "three", Order: 3, Source: SourceCampaign}, dcore.InitialLevel)

	next, ok := Next("one")
	if !ok || next.ID != "three" {
		t.Errorf("Next(one) = %v, %v, expected three", next, ok)
	}
	next, ok = Next("two")
	if !ok || next.ID != "three" {
		t.Errorf("Next(two) = %v, %v, expected three", next, ok)
	}
	if _, ok := Next("three"); ok {
		t.Error("last level should have no next")
	}
}
