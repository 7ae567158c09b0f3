package engine

import (
	"wayfarer/internal/models"
)

// ChoiceView is a presentable dialog choice.
type ChoiceView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// DialogView is the renderable state of the active dialog, if any.
type DialogView struct {
	NodeID  string       `json:"node_id"`
	Speaker Speaker      `json:"speaker"`
	Text    string       `json:"text"` // revealed prefix, full text once Done
	Done    bool         `json:"done"`
	Loading bool         `json:"loading"` // content generation in flight
	Failed  bool         `json:"failed"`  // generation failed, retry available
	Error   string       `json:"error,omitempty"`
	Choices []ChoiceView `json:"choices,omitempty"` // visible set, only once Done
}

// SceneView is the renderable state of the current scene. Hotspots are the
// condition-filtered set, and they are only offered while exploring.
type SceneView struct {
	ID          string           `json:"id"`
	Phase       models.Phase     `json:"phase"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Background  string           `json:"background"`
	Hotspots    []models.Hotspot `json:"hotspots"`
}

// StateView is the read-only projection the presentation layer renders from.
// It is a snapshot: mutating it never touches engine state.
type StateView struct {
	Mode         string               `json:"mode"`
	Phase        models.Phase         `json:"phase"`
	Scene        SceneView            `json:"scene"`
	Dialog       *DialogView          `json:"dialog,omitempty"`
	Flags        []string             `json:"flags"`
	Inventory    map[string]int       `json:"inventory"`
	Memories     []models.MemoryEntry `json:"memories"`
	VisitedSpots []models.VisitedSpot `json:"visited_spots"`
}

// State builds the current projection.
func (e *Engine) State() StateView {
	e.mu.Lock()
	defer e.mu.Unlock()

	view := StateView{
		Mode:         e.mode.String(),
		Phase:        e.phase,
		Flags:        e.flags.Sorted(),
		Inventory:    make(map[string]int, len(e.inventory)),
		Memories:     append([]models.MemoryEntry(nil), e.memories...),
		VisitedSpots: append([]models.VisitedSpot(nil), e.visited...),
	}
	for k, v := range e.inventory {
		view.Inventory[k] = v
	}

	if scene, ok := e.bundle.Scene(e.sceneID); ok {
		view.Scene = SceneView{
			ID:          scene.ID,
			Phase:       scene.Phase,
			Name:        scene.Name,
			Description: scene.Description,
			Background:  scene.Background,
		}
		if e.mode == ModeExploring {
			view.Scene.Hotspots = e.navigator.VisibleHotspots(scene, e.flags)
		}
	}

	if e.node != nil {
		dv := &DialogView{
			NodeID:  e.node.ID,
			Speaker: e.resolver.ResolveSpeaker(e.node.SpeakerID, e.node.Emotion),
			Text:    e.revealed,
			Done:    e.revealDone,
			Loading: e.mode == ModeDialogLoading,
			Failed:  e.mode == ModeDialogFailed,
		}
		if e.genErr != nil {
			dv.Error = e.genErr.Error()
		}
		if e.mode == ModeDialogComplete {
			for _, c := range e.resolver.AvailableChoices(e.node, e.flags) {
				dv.Choices = append(dv.Choices, ChoiceView{ID: c.ID, Text: c.Text})
			}
		}
		view.Dialog = dv
	}
	return view
}
