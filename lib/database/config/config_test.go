package config

import (
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

func TestReadMissingLeavesDest(t *testing.T) {
	dir := t.TempDir()
	dest := sample{Name: "keep"}
	if err := Read(dir, "nothing", &dest); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if dest.Name != "keep" {
		t.Errorf("dest changed: %+v", dest)
	}
	if Exists(dir, "nothing") {
		t.Error("Exists = true for missing file")
	}
}

func TestSaveThenRead(t *testing.T) {
	dir := t.TempDir()
	in := sample{Name: "poke", Items: []string{"b", "a", "c"}}
	if err := Save(dir, "plugin-x", &in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists(dir, "plugin-x") {
		t.Fatal("Exists = false after Save")
	}
	var out sample
	if err := Read(dir, "plugin-x", &out); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if out.Name != "poke" || len(out.Items) != 3 || out.Items[0] != "b" {
		t.Errorf("round trip mismatch: %+v", out)
	}
	entries, _ := os.ReadDir(filepath.Dir(Path(dir, "plugin-x")))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestReadFileBadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(p, []byte("name: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	var out sample
	if err := ReadFile(p, &out); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestDataPath(t *testing.T) {
	got := DataPath("data", "superpoke", "x.yaml")
	want := filepath.Join("data", "plugins", "superpoke", "x.yaml")
	if got != want {
		t.Errorf("DataPath = %q, want %q", got, want)
	}
}
