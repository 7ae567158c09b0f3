package engine

import (
	"errors"
	"fmt"
)

// Every error in this file is recoverable: the engine rejects the intent,
// leaves its state untouched and keeps running.
var (
	// ErrInvalidChoice rejects a stale or forged choice id.
	ErrInvalidChoice = errors.New("invalid choice")

	// ErrInvalidIntent rejects an intent that is not legal in the current mode.
	ErrInvalidIntent = errors.New("intent not allowed in current state")

	// ErrLockedHotspot rejects a click on a hotspot whose condition is not met.
	ErrLockedHotspot = errors.New("hotspot is locked")

	// ErrGenerationFailed marks a failed dialog generation; the dialog enters
	// a retryable failure sub-state.
	ErrGenerationFailed = errors.New("dialog generation failed")

	// ErrGenerationTimeout marks a dialog generation that exceeded its deadline.
	ErrGenerationTimeout = errors.New("dialog generation timed out")

	// ErrNoGenerator marks a generated node reached without a generation
	// collaborator configured.
	ErrNoGenerator = errors.New("no dialog generator configured")
)

// ContentRefError reports a dangling id in authored content reached at
// runtime. The engine stays in its prior state.
type ContentRefError struct {
	Kind string // "scene", "dialog", "action", "hotspot", "choice"
	ID   string
}

func (e *ContentRefError) Error() string {
	return fmt.Sprintf("content reference error: unknown %s %q", e.Kind, e.ID)
}

// IsContentRefError reports whether err is a ContentRefError.
func IsContentRefError(err error) bool {
	var cre *ContentRefError
	return errors.As(err, &cre)
}
