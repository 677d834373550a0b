package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "prefs.yaml"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	got := s.Get()
	if got.ReportTimeframe != DefaultTimeframe {
		t.Errorf("ReportTimeframe = %q, want %q", got.ReportTimeframe, DefaultTimeframe)
	}
	if len(got.KitchenSelection) != 0 {
		t.Errorf("KitchenSelection = %v, want empty", got.KitchenSelection)
	}
}

func TestUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "prefs.yaml")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	err = s.Update(func(p *Preferences) {
		p.ReportTimeframe = "week"
		p.KitchenSelection = []string{"i1", "i2"}
		p.LastTable = 7
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got := reopened.Get()
	if got.ReportTimeframe != "week" {
		t.Errorf("ReportTimeframe = %q, want week", got.ReportTimeframe)
	}
	if len(got.KitchenSelection) != 2 || got.KitchenSelection[1] != "i2" {
		t.Errorf("KitchenSelection = %v, want [i1 i2]", got.KitchenSelection)
	}
	if got.LastTable != 7 {
		t.Errorf("LastTable = %d, want 7", got.LastTable)
	}
}

func TestOpenInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	if err := os.WriteFile(path, []byte("report_timeframe: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); err == nil {
		t.Error("Open() with invalid YAML should fail")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := Memory()
	s.Update(func(p *Preferences) { p.KitchenSelection = []string{"a"} })

	got := s.Get()
	got.KitchenSelection[0] = "mutated"

	if s.Get().KitchenSelection[0] != "a" {
		t.Error("Get() leaked internal slice")
	}
}

func TestUpdateFailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := &Store{path: filepath.Join(blocker, "prefs.yaml"), current: defaults()}
	if err := s.Update(func(p *Preferences) { p.ReportTimeframe = "month" }); err == nil {
		t.Fatal("Update() under a regular file should fail")
	}
	if got := s.Get().ReportTimeframe; got != DefaultTimeframe {
		t.Errorf("ReportTimeframe = %q, want %q", got, DefaultTimeframe)
	}
}
