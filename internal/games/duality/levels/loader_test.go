package levels_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
	"github.com/vovakirdan/tui-duality/internal/games/duality/levels"
	"github.com/vovakirdan/tui-duality/internal/games/duality/levels/formats"
)

func TestCampaignOrder(t *testing.T) {
	lvls, err := levels.Campaign()
	if err != nil {
		t.Fatalf("Campaign failed: %v", err)
	}

	want := []string{"first-light", "void-cross", "bridge", "detour"}
	if len(lvls) != len(want) {
		t.Fatalf("expected %d levels, got %d", len(want), len(lvls))
	}
	for i, id := range want {
		if lvls[i].ID != id {
			t.Errorf("level %d: expected %q, got %q", i, id, lvls[i].ID)
		}
	}
}

func TestCampaignMatchesBuiltins(t *testing.T) {
	lvls, err := levels.Campaign()
	if err != nil {
		t.Fatalf("Campaign failed: %v", err)
	}

	if !lvls[0].Data.Equal(core.InitialLevel()) {
		t.Errorf("first-light differs from the tutorial level:\n%s", core.RenderASCII(lvls[0].Data, lvls[0].NewState()))
	}
	if !lvls[1].Data.Equal(core.LevelTwo()) {
		t.Errorf("void-cross differs from level two:\n%s", core.RenderASCII(lvls[1].Data, lvls[1].NewState()))
	}
}

func TestCampaignPlayableLevelsSolve(t *testing.T) {
	lvls, err := levels.Campaign()
	if err != nil {
		t.Fatalf("Campaign failed: %v", err)
	}

	for _, lvl := range lvls {
		if lvl.ID == "void-cross" {
			continue
		}
		if notes := core.Lint(lvl.Data); len(notes) > 0 {
			t.Errorf("%s: lint: %v", lvl.ID, notes)
		}
		if _, err := core.Solve(lvl.Data, 200000); err != nil {
			t.Errorf("%s: %v", lvl.ID, err)
		}
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoaderMixedFormats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "id: b\nname: Bee\nrows:\n  - \"1Dd\"\n  - \"2LL\"\n")
	writeFile(t, dir, "nested/a.json", `{"width":2,"height":1,"terrain":[[3,2]],"p1Start":{"x":0,"y":0},"p2Start":{"x":1,"y":0},"targets":[]}`)
	writeFile(t, dir, "broken.yaml", "id: broken\nrows:\n  - \"#?#\"\n")
	writeFile(t, dir, "notes.txt", "not a level")

	loader := levels.NewLoader(dir)
	lvls, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(lvls) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(lvls))
	}
	if lvls[0].ID != "a" || lvls[1].ID != "b" {
		t.Errorf("expected [a b], got [%s %s]", lvls[0].ID, lvls[1].ID)
	}
	if lvls[0].Title() != "a" || lvls[1].Title() != "Bee" {
		t.Errorf("unexpected titles %q %q", lvls[0].Title(), lvls[1].Title())
	}

	b := lvls[1].Data
	if b.P1Start != core.P(0, 0) || b.P2Start != core.P(0, 1) {
		t.Errorf("unexpected starts %s %s", b.P1Start, b.P2Start)
	}
	if len(b.Targets) != 1 || b.Targets[0] != core.P(2, 0) {
		t.Errorf("unexpected targets %v", b.Targets)
	}

	ids, err := loader.ListIDs()
	if err != nil {
		t.Fatalf("ListIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 ids, got %v", ids)
	}
}

func TestLoaderLoadByID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x.yaml", "id: x\nrows:\n  - \"1D\"\n")

	loader := levels.NewLoader(dir)
	lvl, err := loader.LoadByID("x")
	if err != nil {
		t.Fatalf("LoadByID failed: %v", err)
	}
	if lvl.Data.Width != 2 || lvl.Data.Height != 1 {
		t.Errorf("expected 2x1, got %dx%d", lvl.Data.Width, lvl.Data.Height)
	}
	if lvl.FilePath == "" {
		t.Error("expected FilePath to be set")
	}

	if _, err := loader.LoadByID("missing"); err == nil {
		t.Error("expected error for missing level")
	}
}

func TestLoadFileRejectsBadJSON(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "bad.json", `{"width":3}`)

	if _, err := levels.NewLoader(dir).LoadFile(p); err == nil {
		t.Error("expected error for incomplete level")
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	src := formats.Level{ID: "rt", Name: "Round Trip", Order: 7, Data: core.LevelTwo()}

	data, err := formats.FormatYAML(src)
	if err != nil {
		t.Fatalf("FormatYAML failed: %v", err)
	}
	back, err := formats.ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML failed: %v\n%s", err, data)
	}
	if back.ID != "rt" || back.Name != "Round Trip" || back.Order != 7 {
		t.Errorf("metadata lost: %+v", back)
	}
	if !back.Data.Equal(src.Data) {
		t.Errorf("level differs after round trip:\n%s", data)
	}
}

func TestYAMLRowsUseMarkersWhenLossless(t *testing.T) {
	off := core.InitialLevel()
	off.P1Start = core.P(1, 2)

	cases := []struct {
		name  string
		lvl   *core.Level
		row   string
		avoid string
	}{
		{"markers", core.InitialLevel(), "#1D##d#", "#DD##D#"},
		{"start off shade", off, "#LDLLD#", "#1DLLD#"},
	}
	for _, tc := range cases {
		data, err := formats.FormatYAML(formats.Level{ID: tc.name, Data: tc.lvl})
		if err != nil {
			t.Fatalf("%s: FormatYAML failed: %v", tc.name, err)
		}
		if !strings.Contains(string(data), tc.row) {
			t.Errorf("%s: expected row %q in:\n%s", tc.name, tc.row, data)
		}
		if strings.Contains(string(data), tc.avoid) {
			t.Errorf("%s: unexpected row %q in:\n%s", tc.name, tc.avoid, data)
		}
		back, err := formats.ParseYAML(data)
		if err != nil {
			t.Fatalf("%s: ParseYAML failed: %v", tc.name, err)
		}
		if !back.Data.Equal(tc.lvl) {
			t.Errorf("%s: level differs after round trip:\n%s", tc.name, data)
		}
	}
}

func TestSortPutsUnorderedLast(t *testing.T) {
	lvls := []levels.Level{{ID: "z"}, {ID: "b", Order: 2}, {ID: "a"}, {ID: "c", Order: 1}}
	levels.Sort(lvls)

	got := []string{lvls[0].ID, lvls[1].ID, lvls[2].ID, lvls[3].ID}
	want := []string{"c", "b", "a", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lvl := levels.Level{ID: "tut", Name: "Tutorial", Data: core.InitialLevel()}

	for _, name := range []string{"out/tut.yaml", "out/tut.json"} {
		p := filepath.Join(dir, name)
		if err := levels.WriteFile(p, lvl); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
		got, err := levels.NewLoader(dir).LoadFile(p)
		if err != nil {
			t.Fatalf("LoadFile %s: %v", name, err)
		}
		if got.ID != "tut" {
			t.Errorf("%s: expected id tut, got %q", name, got.ID)
		}
		if !got.Data.Equal(lvl.Data) {
			t.Errorf("%s: level changed on round trip", name)
		}
	}

	if err := levels.WriteFile(filepath.Join(dir, "x.txt"), lvl); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
