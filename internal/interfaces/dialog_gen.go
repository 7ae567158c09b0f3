package interfaces

import "context"

// DialogRequest describes one dialog line to generate. The engine builds it
// from the current node and play state; the collaborator turns it into text.
type DialogRequest struct {
	SessionID        string   // owning play session, for tracing
	SceneID          string   // scene the dialog runs in
	SceneName        string
	SceneDescription string
	NodeID           string
	SpeakerID        string
	SpeakerName      string
	Prompt           string   // authored generation prompt
	Flags            []string // narrative progress, sorted
	Memories         []string // recent collected memory titles, oldest first
}

// DialogResult is the generated dialog content.
type DialogResult struct {
	Text string
}

// DialogGenerator produces dialog text for generated nodes. Calls may be
// slow (seconds); the engine stays responsive while awaiting a result and
// bounds the wait with a caller-supplied context.
type DialogGenerator interface {
	GenerateDialog(ctx context.Context, req *DialogRequest) (*DialogResult, error)
}
