package content

import (
	"os"
	"path/filepath"
	"testing"

	"wayfarer/internal/models"
)

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.yaml")
	src := []byte(`
start_scene: s1
scenes:
  - id: s1
    phase: planning
`)
	if err := os.WriteFile(path, src, 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b.StartSceneID != "s1" {
		t.Errorf("start scene = %q", b.StartSceneID)
	}
}

// The shipped sample story must stay loadable; a dangling id here would
// only surface at server boot otherwise.
func TestShippedStoryIsValid(t *testing.T) {
	b, err := Load(filepath.Join("..", "..", "content", "story.yaml"))
	if err != nil {
		t.Fatalf("shipped story: %v", err)
	}
	start, ok := b.Scene(b.StartSceneID)
	if !ok {
		t.Fatalf("start scene %q missing", b.StartSceneID)
	}
	if start.Phase != models.PhasePlanning {
		t.Errorf("start phase = %q", start.Phase)
	}
}
