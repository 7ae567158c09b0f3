package interfaces

import (
	"context"
	"errors"

	"wayfarer/internal/models"
)

// ErrSaveNotFound is returned by SaveStore.Get for an unknown save id.
var ErrSaveNotFound = errors.New("save not found")

// ErrStorageUnavailable wraps provider I/O failures. Storage loss is never
// fatal to the engine; callers surface it and keep running in memory.
var ErrStorageUnavailable = errors.New("storage unavailable")

// SaveStore is the key-value persistence collaborator for game saves.
// All operations are independently failable; implementations decide
// durability semantics (atomicity, caching).
type SaveStore interface {
	// Get returns the save with the given id, or ErrSaveNotFound.
	Get(ctx context.Context, id string) (*models.GameSave, error)

	// Set writes the save, overwriting any previous snapshot with the same id.
	Set(ctx context.Context, save *models.GameSave) error

	// List returns summaries of every stored save, most recent first.
	List(ctx context.Context) ([]models.SaveSummary, error)

	// Delete removes the save. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
