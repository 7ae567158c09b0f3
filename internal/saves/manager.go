package saves

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"wayfarer/internal/content"
	"wayfarer/internal/engine"
	"wayfarer/internal/interfaces"
	"wayfarer/internal/models"
)

// CorruptSaveError marks a stored snapshot that cannot reconstruct a valid
// engine. Recoverable: the caller falls back to the new-game path.
type CorruptSaveError struct {
	SaveID string
	Reason string
}

func (e *CorruptSaveError) Error() string {
	return fmt.Sprintf("corrupt save %q: %s", e.SaveID, e.Reason)
}

// IsCorruptSave reports whether err is a CorruptSaveError.
func IsCorruptSave(err error) bool {
	var cse *CorruptSaveError
	return errors.As(err, &cse)
}

// Manager owns the save lifecycle: snapshotting a live engine into the
// store, and restoring engines from stored snapshots. Durability semantics
// belong to the store; failures here are surfaced, never fatal, and the
// engine keeps running in memory.
type Manager struct {
	bundle *content.Bundle
	store  interfaces.SaveStore
	engCfg engine.Config
	now    func() time.Time
}

// NewManager builds a manager writing through store and restoring engines
// with engCfg (the bundle in engCfg is authoritative).
func NewManager(store interfaces.SaveStore, engCfg engine.Config) *Manager {
	return &Manager{
		bundle: engCfg.Bundle,
		store:  store,
		engCfg: engCfg,
		now:    time.Now,
	}
}

// Save snapshots the engine under the given id and writes it to the store.
func (m *Manager) Save(ctx context.Context, id string, eng *engine.Engine) (*models.GameSave, error) {
	if id == "" {
		return nil, fmt.Errorf("saves: save id is required")
	}
	save := eng.Snapshot()
	save.ID = id
	save.LastUpdated = m.now()

	if err := m.store.Set(ctx, save); err != nil {
		log.Printf("[SaveManager] write of %q failed: %v", id, err)
		return nil, fmt.Errorf("saves: write %q: %w", id, err)
	}
	return save, nil
}

// Load fetches and validates a stored snapshot.
func (m *Manager) Load(ctx context.Context, id string) (*models.GameSave, error) {
	save, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("saves: read %q: %w", id, err)
	}
	if err := m.Validate(save); err != nil {
		return nil, err
	}
	return save, nil
}

// Restore fetches a snapshot and reconstructs a live engine from it. A
// snapshot referencing unknown scene or phase ids is rejected as corrupt
// rather than constructing an invalid engine.
func (m *Manager) Restore(ctx context.Context, id string) (*engine.Engine, error) {
	save, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	eng, err := engine.NewFromSave(m.engCfg, save)
	if err != nil {
		return nil, &CorruptSaveError{SaveID: id, Reason: err.Error()}
	}
	return eng, nil
}

// Validate checks that a snapshot can reconstruct Exploring state exactly.
func (m *Manager) Validate(save *models.GameSave) error {
	if save == nil {
		return &CorruptSaveError{Reason: "empty snapshot"}
	}
	if !save.Phase.Valid() {
		return &CorruptSaveError{SaveID: save.ID, Reason: fmt.Sprintf("unknown phase %q", save.Phase)}
	}
	if _, ok := m.bundle.Scene(save.SceneID); !ok {
		return &CorruptSaveError{SaveID: save.ID, Reason: fmt.Sprintf("unknown scene %q", save.SceneID)}
	}
	return nil
}

// List returns stored save summaries, most recent first.
func (m *Manager) List(ctx context.Context) ([]models.SaveSummary, error) {
	summaries, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("saves: list: %w", err)
	}
	return summaries, nil
}

// Delete removes a stored save.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("saves: delete %q: %w", id, err)
	}
	return nil
}
