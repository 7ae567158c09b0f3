package engine

import (
	"wayfarer/internal/content"
	"wayfarer/internal/models"
)

// Speaker display defaults when the registry cannot resolve an id. An
// unresolvable speaker is a recoverable condition, never an error: the raw
// id shows up as the name so authors notice.
const (
	playerLabel        = "You"
	defaultAccentColor = "#888888"
)

// Speaker is the renderable identity of a dialog line.
type Speaker struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Sprite string `json:"sprite,omitempty"`
}

// DialogResolver turns dialog node ids plus current flags into renderable
// state: speaker info and the visible choice set.
type DialogResolver struct {
	bundle *content.Bundle
}

// NewDialogResolver builds a resolver over the content bundle.
func NewDialogResolver(bundle *content.Bundle) *DialogResolver {
	return &DialogResolver{bundle: bundle}
}

// Node looks up a dialog node, reporting a dangling id as a ContentRefError.
func (r *DialogResolver) Node(id string) (*models.DialogNode, error) {
	node, ok := r.bundle.Dialog(id)
	if !ok {
		return nil, &ContentRefError{Kind: "dialog", ID: id}
	}
	return node, nil
}

// AvailableChoices filters the node's choices by condition, preserving the
// authored order. A node with zero authored choices yields an empty list;
// callers infer "advance" semantics from emptiness. Invisible choices are
// excluded without evaluating their side effects.
func (r *DialogResolver) AvailableChoices(node *models.DialogNode, flags FlagSet) []models.DialogChoice {
	if len(node.Choices) == 0 {
		return nil
	}
	visible := make([]models.DialogChoice, 0, len(node.Choices))
	for _, c := range node.Choices {
		if EvaluateCondition(c.Condition, flags) {
			visible = append(visible, c)
		}
	}
	return visible
}

// ResolveSpeaker maps a speaker id to display info. "narrator" renders with
// an empty name, "player" with a fixed label; everything else goes through
// the character registry with a raw-id fallback.
func (r *DialogResolver) ResolveSpeaker(speakerID, emotion string) Speaker {
	switch speakerID {
	case models.SpeakerNarrator:
		return Speaker{ID: speakerID, Name: "", Color: defaultAccentColor}
	case models.SpeakerPlayer:
		return Speaker{ID: speakerID, Name: playerLabel, Color: defaultAccentColor}
	}

	ch, ok := r.bundle.Character(speakerID)
	if !ok {
		return Speaker{ID: speakerID, Name: speakerID, Color: defaultAccentColor}
	}

	sprite := ch.DefaultSprite
	if emotion != "" {
		if s, ok := ch.Sprites[emotion]; ok {
			sprite = s
		}
	}
	color := ch.AccentColor
	if color == "" {
		color = defaultAccentColor
	}
	return Speaker{ID: ch.ID, Name: ch.Name, Color: color, Sprite: sprite}
}
