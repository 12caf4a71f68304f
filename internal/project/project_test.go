package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/PrintSheet/internal/model"
)

func TestSaveAndLoadProject(t *testing.T) {
	p := model.NewProject()
	p.Name = "Stickers"
	p.Sheet = model.GetPreset("A5").Settings()
	p.Sheet.Orientation = model.Landscape

	logo := model.NewItem(model.KindSymbol, "Logo", 20, 10)
	logo.Outline = model.Outline{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}}
	logo.SetPosition(30, 20)
	qr := model.NewItem(model.KindQRCode, "Link", 25, 25)
	qr.Source = "https://example.com"
	qr.Rotated = true
	p.Items = []*model.Item{logo, qr}

	path, err := Save(filepath.Join(t.TempDir(), "stickers"), p)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasSuffix(path, FileExtension) {
		t.Errorf("expected %s extension, got %s", FileExtension, path)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Name != "Stickers" {
		t.Errorf("expected name Stickers, got %s", loaded.Name)
	}
	if loaded.Sheet != p.Sheet {
		t.Errorf("sheet settings changed: %+v vs %+v", loaded.Sheet, p.Sheet)
	}
	if len(loaded.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(loaded.Items))
	}
	if loaded.Items[0].ID != logo.ID || loaded.Items[0].CenterX != 30 || len(loaded.Items[0].Outline) != 3 {
		t.Errorf("logo not restored: %+v", loaded.Items[0])
	}
	if !loaded.Items[1].Rotated || loaded.Items[1].Source != "https://example.com" {
		t.Errorf("qr not restored: %+v", loaded.Items[1])
	}
}

func TestSaveKeepsExplicitExtension(t *testing.T) {
	path, err := Save(filepath.Join(t.TempDir(), "sheet.json"), model.NewProject())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Ext(path) != ".json" {
		t.Errorf("expected .json to be kept, got %s", path)
	}
}

func TestLoadRepairsItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.printsheet")
	data := []byte(`{"version":1,"project":{"name":"","sheet":{"preset":"A3"},"items":[
		{"id":"a","kind":"text","label":"One","width":10,"height":5,"scale":0},
		{"id":"a","kind":"text","label":"Two","width":10,"height":5,"scale":2},
		null,
		{"kind":"text","label":"Three","width":10,"height":5,"scale":1}]}}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Name != "old" {
		t.Errorf("expected name from file, got %q", p.Name)
	}
	if p.Sheet.Width != 297 || p.Sheet.Orientation != model.Portrait {
		t.Errorf("expected A3 portrait sheet, got %+v", p.Sheet)
	}
	if len(p.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(p.Items))
	}
	if p.Items[0].Scale != 1 {
		t.Errorf("expected scale repaired to 1, got %f", p.Items[0].Scale)
	}
	ids := map[string]bool{}
	for _, it := range p.Items {
		if it.ID == "" || ids[it.ID] {
			t.Errorf("item %q has missing or duplicate ID %q", it.Label, it.ID)
		}
		ids[it.ID] = true
	}
	if got := p.Items[2].ID; len(got) != 36 {
		t.Errorf("expected a full UUID for the repaired ID, got %q", got)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"garbage.printsheet":   "{{{",
		"noversion.printsheet": `{"project":{"name":"x"}}`,
		"future.printsheet":    `{"version":99,"project":{"name":"x"}}`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(dir, "missing.printsheet")); err == nil {
		t.Error("expected error for missing file")
	}
}
