package storage

import (
	"context"
	"sort"
	"sync"

	"wayfarer/internal/interfaces"
	"wayfarer/internal/models"
)

// MemoryStore is a map-backed SaveStore. It backs tests and serves as the
// fallback when neither redis nor mysql is reachable at boot: the server
// keeps running, saves just do not survive a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	saves map[string]*models.GameSave
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{saves: make(map[string]*models.GameSave)}
}

// Get implements interfaces.SaveStore.
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.GameSave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	save, ok := s.saves[id]
	if !ok {
		return nil, interfaces.ErrSaveNotFound
	}
	return save.Clone(), nil
}

// Set implements interfaces.SaveStore.
func (s *MemoryStore) Set(ctx context.Context, save *models.GameSave) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves[save.ID] = save.Clone()
	return nil
}

// List implements interfaces.SaveStore.
func (s *MemoryStore) List(ctx context.Context) ([]models.SaveSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]models.SaveSummary, 0, len(s.saves))
	for _, save := range s.saves {
		summaries = append(summaries, save.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastUpdated.After(summaries[j].LastUpdated)
	})
	return summaries, nil
}

// Delete implements interfaces.SaveStore.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saves, id)
	return nil
}
