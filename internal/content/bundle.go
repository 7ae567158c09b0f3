package content

import (
	"fmt"

	"wayfarer/internal/models"
)

// Bundle is the immutable authored content for one game: scenes, dialogs,
// characters and actions, indexed by id. It is loaded once at startup and
// passed by reference into every engine; nothing mutates it afterwards.
type Bundle struct {
	StartSceneID string

	scenes     map[string]*models.Scene
	dialogs    map[string]*models.DialogNode
	characters map[string]*models.Character
	actions    map[string]*models.Action

	sceneOrder []string // authored order, for listings
}

// Document is the on-disk YAML shape of a content bundle.
type Document struct {
	StartScene string              `yaml:"start_scene"`
	Scenes     []models.Scene      `yaml:"scenes"`
	Dialogs    []models.DialogNode `yaml:"dialogs"`
	Characters []models.Character  `yaml:"characters"`
	Actions    []models.Action     `yaml:"actions"`
}

// New builds a bundle from a document and validates every cross-reference.
func New(doc *Document) (*Bundle, error) {
	b := &Bundle{
		StartSceneID: doc.StartScene,
		scenes:       make(map[string]*models.Scene, len(doc.Scenes)),
		dialogs:      make(map[string]*models.DialogNode, len(doc.Dialogs)),
		characters:   make(map[string]*models.Character, len(doc.Characters)),
		actions:      make(map[string]*models.Action, len(doc.Actions)),
	}

	for i := range doc.Scenes {
		s := &doc.Scenes[i]
		if s.ID == "" {
			return nil, fmt.Errorf("scene %d has no id", i)
		}
		if _, dup := b.scenes[s.ID]; dup {
			return nil, fmt.Errorf("duplicate scene id %q", s.ID)
		}
		b.scenes[s.ID] = s
		b.sceneOrder = append(b.sceneOrder, s.ID)
	}
	for i := range doc.Dialogs {
		d := &doc.Dialogs[i]
		if d.ID == "" {
			return nil, fmt.Errorf("dialog %d has no id", i)
		}
		if _, dup := b.dialogs[d.ID]; dup {
			return nil, fmt.Errorf("duplicate dialog id %q", d.ID)
		}
		b.dialogs[d.ID] = d
	}
	for i := range doc.Characters {
		c := &doc.Characters[i]
		if c.ID == "" {
			return nil, fmt.Errorf("character %d has no id", i)
		}
		b.characters[c.ID] = c
	}
	for i := range doc.Actions {
		a := &doc.Actions[i]
		if a.ID == "" {
			return nil, fmt.Errorf("action %d has no id", i)
		}
		b.actions[a.ID] = a
	}

	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Scene looks up a scene by id.
func (b *Bundle) Scene(id string) (*models.Scene, bool) {
	s, ok := b.scenes[id]
	return s, ok
}

// Dialog looks up a dialog node by id.
func (b *Bundle) Dialog(id string) (*models.DialogNode, bool) {
	d, ok := b.dialogs[id]
	return d, ok
}

// Character looks up a registry character by id.
func (b *Bundle) Character(id string) (*models.Character, bool) {
	c, ok := b.characters[id]
	return c, ok
}

// Action looks up an action by id.
func (b *Bundle) Action(id string) (*models.Action, bool) {
	a, ok := b.actions[id]
	return a, ok
}

// SceneIDs returns scene ids in authored order.
func (b *Bundle) SceneIDs() []string {
	return append([]string(nil), b.sceneOrder...)
}

// validate walks every reference in the bundle. Dangling ids are authoring
// bugs and are rejected at load time so the engine never sees them.
func (b *Bundle) validate() error {
	if b.StartSceneID == "" {
		return fmt.Errorf("content: no start_scene")
	}
	if _, ok := b.scenes[b.StartSceneID]; !ok {
		return fmt.Errorf("content: start_scene %q does not exist", b.StartSceneID)
	}

	for _, id := range b.sceneOrder {
		s := b.scenes[id]
		if !s.Phase.Valid() {
			return fmt.Errorf("content: scene %q has unknown phase %q", s.ID, s.Phase)
		}
		if s.EntryDialogID != "" {
			if _, ok := b.dialogs[s.EntryDialogID]; !ok {
				return fmt.Errorf("content: scene %q entry dialog %q does not exist", s.ID, s.EntryDialogID)
			}
		}
		for _, h := range s.Hotspots {
			if err := b.validateHotspot(s, &h); err != nil {
				return err
			}
		}
	}

	for _, c := range b.characters {
		switch c.Type {
		// An empty type defaults to an ordinary character.
		case "", models.CharacterNarrator, models.CharacterPlayer, models.CharacterNPC:
		default:
			return fmt.Errorf("content: character %q has unknown type %q", c.ID, c.Type)
		}
	}

	for _, d := range b.dialogs {
		if d.Generated && d.Prompt == "" {
			return fmt.Errorf("content: generated dialog %q has no prompt", d.ID)
		}
		if d.NextNodeID != "" {
			if _, ok := b.dialogs[d.NextNodeID]; !ok {
				return fmt.Errorf("content: dialog %q next node %q does not exist", d.ID, d.NextNodeID)
			}
		}
		for _, c := range d.Choices {
			if c.NextNodeID != "" {
				if _, ok := b.dialogs[c.NextNodeID]; !ok {
					return fmt.Errorf("content: dialog %q choice %q next node %q does not exist", d.ID, c.ID, c.NextNodeID)
				}
			}
			if c.TargetSceneID != "" {
				if _, ok := b.scenes[c.TargetSceneID]; !ok {
					return fmt.Errorf("content: dialog %q choice %q target scene %q does not exist", d.ID, c.ID, c.TargetSceneID)
				}
			}
		}
	}
	return nil
}

func (b *Bundle) validateHotspot(s *models.Scene, h *models.Hotspot) error {
	if h.TargetID == "" {
		return fmt.Errorf("content: scene %q hotspot %q has no target", s.ID, h.ID)
	}
	switch h.Kind {
	case models.HotspotDialog:
		if _, ok := b.dialogs[h.TargetID]; !ok {
			return fmt.Errorf("content: scene %q hotspot %q targets unknown dialog %q", s.ID, h.ID, h.TargetID)
		}
	case models.HotspotScene:
		if _, ok := b.scenes[h.TargetID]; !ok {
			return fmt.Errorf("content: scene %q hotspot %q targets unknown scene %q", s.ID, h.ID, h.TargetID)
		}
	case models.HotspotAction:
		if _, ok := b.actions[h.TargetID]; !ok {
			return fmt.Errorf("content: scene %q hotspot %q targets unknown action %q", s.ID, h.ID, h.TargetID)
		}
	case models.HotspotItem:
		// item ids are opaque, nothing to resolve
	default:
		return fmt.Errorf("content: scene %q hotspot %q has unknown kind %q", s.ID, h.ID, h.Kind)
	}
	return nil
}
