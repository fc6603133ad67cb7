package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/slide/heap"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[heap]
initial-capacity = 128
min-capacity = 32
max-roots = 64
policy = "headroom"
headroom-factor = 2.0

[stats]
database = "collections.db"
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Heap.InitialCapacity != 128 {
		t.Errorf("InitialCapacity = %d, want 128", c.Heap.InitialCapacity)
	}
	if c.Heap.HeadroomFactor != 2.0 {
		t.Errorf("HeadroomFactor = %g, want 2.0", c.Heap.HeadroomFactor)
	}
	if c.Stats.Database != "collections.db" {
		t.Errorf("Database = %q, want collections.db", c.Stats.Database)
	}
	if c.Dir == "" {
		t.Error("Dir should be set at load time")
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[heap]
initial-capacity = 8
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Heap.Policy != PolicyHeadroom {
		t.Errorf("Policy = %q, want headroom default", c.Heap.Policy)
	}
	if c.Heap.HeadroomFactor != heap.DefaultHeadroomFactor {
		t.Errorf("HeadroomFactor = %g, want %g", c.Heap.HeadroomFactor, heap.DefaultHeadroomFactor)
	}
	if c.Heap.MinCapacity != heap.DefaultMinCapacity {
		t.Errorf("MinCapacity = %d, want %d", c.Heap.MinCapacity, heap.DefaultMinCapacity)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown policy", "[heap]\npolicy = \"generational\"\n"},
		{"negative capacity", "[heap]\ninitial-capacity = -1\n"},
		{"factor too small", "[heap]\nheadroom-factor = 0.5\n"},
		{"not toml", "{\"heap\": {}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			if _, err := Load(dir); err == nil {
				t.Error("Load should have failed")
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load should fail when slide.toml is absent")
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[heap]\npolicy = \"fixed\"\ninitial-capacity = 4\n")

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c == nil {
		t.Fatal("FindAndLoad found nothing")
	}
	if c.Heap.Policy != PolicyFixed {
		t.Errorf("Policy = %q, want fixed", c.Heap.Policy)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	c, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c != nil {
		t.Error("FindAndLoad should return nil when nothing is found")
	}
}

func TestHeapConfig(t *testing.T) {
	c := Default()
	c.Heap.InitialCapacity = 8
	cfg := c.HeapConfig()
	if cfg.InitialCapacity != 8 {
		t.Errorf("InitialCapacity = %d, want 8", cfg.InitialCapacity)
	}
	if cfg.Policy.String() != "headroom" {
		t.Errorf("Policy = %q, want headroom", cfg.Policy)
	}

	c.Heap.Policy = PolicyFixed
	if got := c.HeapConfig().Policy.String(); got != "fixed" {
		t.Errorf("Policy = %q, want fixed", got)
	}
}
