package engine

// Intent is a player or presentation command dispatched into the engine.
// Intents form a closed sum type so the transition function can switch
// exhaustively; structs, not strings, carry the payloads.
type Intent interface {
	isIntent()
}

// StartDialog begins the dialog thread rooted at DialogID.
type StartDialog struct {
	DialogID string
}

// Advance moves a dialog forward: while typing it forces the reveal to
// complete, on a completed node without choices it resolves the successor.
type Advance struct{}

// MakeChoice selects a visible choice on the current completed node.
type MakeChoice struct {
	ChoiceID string
}

// ChangeScene moves to another scene, clearing any active dialog.
type ChangeScene struct {
	SceneID string
}

// ClickHotspot resolves a hotspot of the current scene into its transition.
type ClickHotspot struct {
	HotspotID string
}

// CompleteTypewriter jumps the in-flight reveal straight to the full text.
type CompleteTypewriter struct{}

// RetryGeneration re-requests the generated dialog after a failure.
type RetryGeneration struct{}

func (StartDialog) isIntent()        {}
func (Advance) isIntent()            {}
func (MakeChoice) isIntent()         {}
func (ChangeScene) isIntent()        {}
func (ClickHotspot) isIntent()       {}
func (CompleteTypewriter) isIntent() {}
func (RetryGeneration) isIntent()    {}

// TransitionKind labels an observable state transition.
type TransitionKind string

const (
	TransSceneChanged    TransitionKind = "scene_changed"
	TransPhaseAdvanced   TransitionKind = "phase_advanced"
	TransDialogLoading   TransitionKind = "dialog_loading"
	TransDialogStarted   TransitionKind = "dialog_started"
	TransDialogCompleted TransitionKind = "dialog_completed" // full text revealed
	TransDialogEnded     TransitionKind = "dialog_ended"     // back to exploring
	TransDialogFailed    TransitionKind = "dialog_failed"
	TransChoiceMade      TransitionKind = "choice_made"
	TransFlagSet         TransitionKind = "flag_set"
	TransItemAdded       TransitionKind = "item_added"
	TransActionRun       TransitionKind = "action_run"
	TransMemoryAdded     TransitionKind = "memory_added"
)

// Transition is one observable state change. Chained steps (a scene change
// followed by its entry dialog) stay discrete: callers see both, in order.
type Transition struct {
	Kind     TransitionKind `json:"kind"`
	SceneID  string         `json:"scene_id,omitempty"`
	DialogID string         `json:"dialog_id,omitempty"`
	ChoiceID string         `json:"choice_id,omitempty"`
	Flag     string         `json:"flag,omitempty"`
	ItemID   string         `json:"item_id,omitempty"`
	ActionID string         `json:"action_id,omitempty"`
	Phase    string         `json:"phase,omitempty"`
	Error    string         `json:"error,omitempty"`
}
