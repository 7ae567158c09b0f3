package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"wayfarer/internal/interfaces"
	"wayfarer/internal/models"
)

func sampleSave(id string, ts time.Time) *models.GameSave {
	return &models.GameSave{
		ID:          id,
		Phase:       models.PhaseTraveling,
		SceneID:     "scene_gate",
		Flags:       []string{"packed", "checked_in"},
		Inventory:   map[string]int{"ticket_stub": 1},
		LastUpdated: ts,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	save := sampleSave("slot1", time.Now())
	if err := s.Set(ctx, save); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "slot1")
	if err != nil {
		t.Fatal(err)
	}
	if got.SceneID != save.SceneID || got.Inventory["ticket_stub"] != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "ghost"); !errors.Is(err, interfaces.ErrSaveNotFound) {
		t.Fatalf("err = %v, want ErrSaveNotFound", err)
	}
}

func TestMemoryStoreIsolatesClones(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	save := sampleSave("slot1", time.Now())
	if err := s.Set(ctx, save); err != nil {
		t.Fatal(err)
	}

	// Mutating either side of the round trip must not leak into the store.
	save.Inventory["ticket_stub"] = 99
	got, _ := s.Get(ctx, "slot1")
	if got.Inventory["ticket_stub"] != 1 {
		t.Error("caller mutation leaked into the store")
	}

	got.Flags[0] = "tampered"
	again, _ := s.Get(ctx, "slot1")
	if again.Flags[0] != "packed" {
		t.Error("reader mutation leaked into the store")
	}
}

func TestMemoryStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := s.Set(ctx, sampleSave(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	summaries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 3 || summaries[0].ID != "new" || summaries[2].ID != "old" {
		t.Errorf("list = %+v", summaries)
	}

	if err := s.Delete(ctx, "mid"); err != nil {
		t.Fatal(err)
	}
	summaries, _ = s.List(ctx)
	if len(summaries) != 2 {
		t.Errorf("after delete: %+v", summaries)
	}

	// Deleting an absent id is a no-op.
	if err := s.Delete(ctx, "ghost"); err != nil {
		t.Errorf("delete of missing id: %v", err)
	}
}
