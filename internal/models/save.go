package models

import (
	"time"
)

// MemoryEntry is one collected travel memory. Memories are an append-only
// log for the lifetime of a save.
type MemoryEntry struct {
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Image       string    `json:"image,omitempty" yaml:"image"`
	CollectedAt time.Time `json:"collected_at,omitempty" yaml:"-"`
}

// VisitedSpot records one hotspot interaction. Append-only.
type VisitedSpot struct {
	SceneID   string    `json:"scene_id"`
	HotspotID string    `json:"hotspot_id"`
	VisitedAt time.Time `json:"visited_at"`
}

// GameSave is the durable snapshot of a playthrough. Only Exploring-state
// fields are captured: a reload always resumes at Exploring in the saved
// scene, mid-dialog progress is not durable.
type GameSave struct {
	ID           string         `json:"id"`
	Phase        Phase          `json:"phase"`
	SceneID      string         `json:"scene_id"`
	DialogNodeID string         `json:"dialog_node_id,omitempty"` // always empty in snapshots, kept for wire compatibility
	Flags        []string       `json:"flags"`                    // sorted for deterministic serialization
	Inventory    map[string]int `json:"inventory"`
	Memories     []MemoryEntry  `json:"memories"`
	VisitedSpots []VisitedSpot  `json:"visited_spots"`
	LastUpdated  time.Time      `json:"last_updated"`
}

// SaveSummary is the listing projection of a GameSave.
type SaveSummary struct {
	ID          string    `json:"id"`
	Phase       Phase     `json:"phase"`
	SceneID     string    `json:"scene_id"`
	LastUpdated time.Time `json:"last_updated"`
}

// Summary projects the save down to its listing metadata.
func (s *GameSave) Summary() SaveSummary {
	return SaveSummary{
		ID:          s.ID,
		Phase:       s.Phase,
		SceneID:     s.SceneID,
		LastUpdated: s.LastUpdated,
	}
}

// Clone returns a deep copy so stores and callers never alias live state.
func (s *GameSave) Clone() *GameSave {
	if s == nil {
		return nil
	}
	out := *s
	out.Flags = append([]string(nil), s.Flags...)
	out.Memories = append([]MemoryEntry(nil), s.Memories...)
	out.VisitedSpots = append([]VisitedSpot(nil), s.VisitedSpots...)
	if s.Inventory != nil {
		out.Inventory = make(map[string]int, len(s.Inventory))
		for k, v := range s.Inventory {
			out.Inventory[k] = v
		}
	}
	return &out
}
