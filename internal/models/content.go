package models

// Phase represents a coarse narrative act of the journey. Phases are ordered
// and strictly monotonic within one playthrough; they drive the HUD progress
// bar only, never gating.
type Phase string

const (
	PhasePlanning    Phase = "planning"
	PhaseBooking     Phase = "booking"
	PhaseDeparture   Phase = "departure"
	PhaseTraveling   Phase = "traveling"
	PhaseDestination Phase = "destination"
	PhaseReturn      Phase = "return"
	PhaseHome        Phase = "home"
)

// phaseOrder fixes the progression order for Index comparisons.
var phaseOrder = []Phase{
	PhasePlanning,
	PhaseBooking,
	PhaseDeparture,
	PhaseTraveling,
	PhaseDestination,
	PhaseReturn,
	PhaseHome,
}

// Index returns the position of the phase in the playthrough order,
// or -1 for an unknown phase.
func (p Phase) Index() int {
	for i, phase := range phaseOrder {
		if phase == p {
			return i
		}
	}
	return -1
}

// Valid reports whether the phase is one of the known acts.
func (p Phase) Valid() bool {
	return p.Index() >= 0
}

// After reports whether p comes later than other in the playthrough order.
func (p Phase) After(other Phase) bool {
	return p.Index() > other.Index()
}

// HotspotKind determines what a hotspot click resolves to.
type HotspotKind string

const (
	HotspotDialog HotspotKind = "dialog" // starts a dialog node
	HotspotScene  HotspotKind = "scene"  // changes scene
	HotspotItem   HotspotKind = "item"   // picks up an item
	HotspotAction HotspotKind = "action" // runs a content-defined action
)

// Rect is a normalized rectangle in 0-100 scene coordinates.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Hotspot is a clickable region in a scene.
type Hotspot struct {
	ID          string      `json:"id" yaml:"id"`
	Rect        Rect        `json:"rect" yaml:"rect"`
	Label       string      `json:"label" yaml:"label"`
	Kind        HotspotKind `json:"kind" yaml:"kind"`
	TargetID    string      `json:"target_id" yaml:"target"`          // dialog, scene, item or action id, kind-dependent
	Condition   string      `json:"condition,omitempty" yaml:"condition"` // flag gating the hotspot, empty means always visible
	Highlighted bool        `json:"highlighted,omitempty" yaml:"highlighted"` // presentation hint only
}

// Scene is one node of the scene graph.
type Scene struct {
	ID            string    `json:"id" yaml:"id"`
	Phase         Phase     `json:"phase" yaml:"phase"`
	Name          string    `json:"name" yaml:"name"`
	Description   string    `json:"description" yaml:"description"`
	Background    string    `json:"background" yaml:"background"`
	Hotspots      []Hotspot `json:"hotspots" yaml:"hotspots"`
	EntryDialogID string    `json:"entry_dialog_id,omitempty" yaml:"entry_dialog"` // dialog auto-started on scene entry
	EntryFlags    []string  `json:"entry_flags,omitempty" yaml:"entry_flags"`      // flags set when the scene is entered
}

// DialogChoice is one branch out of a dialog node. A choice either points at
// the next node, or carries effects (flags to set, a scene to transition to).
type DialogChoice struct {
	ID            string   `json:"id" yaml:"id"`
	Text          string   `json:"text" yaml:"text"`
	NextNodeID    string   `json:"next_node_id,omitempty" yaml:"next"`
	SetFlags      []string `json:"set_flags,omitempty" yaml:"set_flags"`
	TargetSceneID string   `json:"target_scene_id,omitempty" yaml:"scene"`
	Condition     string   `json:"condition,omitempty" yaml:"condition"` // visibility gate, empty means always visible
}

// DialogNode is one unit of dialog text plus optional branching choices.
// A node with no choices implicitly allows "advance"; a node with choices
// blocks advance until a choice is made.
type DialogNode struct {
	ID         string         `json:"id" yaml:"id"`
	SpeakerID  string         `json:"speaker_id" yaml:"speaker"` // "narrator" and "player" are reserved
	Text       string         `json:"text" yaml:"text"`
	Emotion    string         `json:"emotion,omitempty" yaml:"emotion"` // selects a speaker sprite
	Choices    []DialogChoice `json:"choices,omitempty" yaml:"choices"`
	NextNodeID string         `json:"next_node_id,omitempty" yaml:"next"` // successor when the node has no choices
	Generated  bool           `json:"generated,omitempty" yaml:"generated"` // text comes from the generation collaborator
	Prompt     string         `json:"prompt,omitempty" yaml:"prompt"`       // generation prompt, only when Generated
}

// CharacterType classifies a speaker.
type CharacterType string

const (
	CharacterNarrator CharacterType = "narrator"
	CharacterPlayer   CharacterType = "player"
	CharacterNPC      CharacterType = "npc"
)

// Reserved speaker ids resolved without a registry lookup.
const (
	SpeakerNarrator = "narrator"
	SpeakerPlayer   = "player"
)

// Character is an entry of the character registry.
type Character struct {
	ID            string            `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	Type          CharacterType     `json:"type" yaml:"type"`
	Sprites       map[string]string `json:"sprites,omitempty" yaml:"sprites"` // emotion -> sprite image
	DefaultSprite string            `json:"default_sprite,omitempty" yaml:"default_sprite"`
	AccentColor   string            `json:"accent_color,omitempty" yaml:"accent_color"`
}

// Action is a content-defined effect bundle triggered by an action hotspot.
type Action struct {
	ID          string         `json:"id" yaml:"id"`
	Description string         `json:"description,omitempty" yaml:"description"`
	SetFlags    []string       `json:"set_flags,omitempty" yaml:"set_flags"`
	AddItems    map[string]int `json:"add_items,omitempty" yaml:"add_items"`
	Memory      *MemoryEntry   `json:"memory,omitempty" yaml:"memory"` // collected memory, if the action grants one
}
