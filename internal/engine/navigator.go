package engine

import (
	"wayfarer/internal/content"
	"wayfarer/internal/models"
)

// HotspotResolution is the transition a hotspot click resolves to.
type HotspotResolution struct {
	StartDialogID string // kind=dialog
	ChangeSceneID string // kind=scene
	PickupItemID  string // kind=item
	RunActionID   string // kind=action
}

// SceneNavigator resolves hotspot clicks into engine transitions and computes
// the condition-filtered hotspot set. The navigator and the presentation
// layer agree on the same filtered set; this is the enforcement point for
// locked content.
type SceneNavigator struct {
	bundle *content.Bundle
}

// NewSceneNavigator builds a navigator over the content bundle.
func NewSceneNavigator(bundle *content.Bundle) *SceneNavigator {
	return &SceneNavigator{bundle: bundle}
}

// Scene looks up a scene, reporting a dangling id as a ContentRefError.
func (n *SceneNavigator) Scene(id string) (*models.Scene, error) {
	scene, ok := n.bundle.Scene(id)
	if !ok {
		return nil, &ContentRefError{Kind: "scene", ID: id}
	}
	return scene, nil
}

// VisibleHotspots filters a scene's hotspots by condition, preserving the
// authored order.
func (n *SceneNavigator) VisibleHotspots(scene *models.Scene, flags FlagSet) []models.Hotspot {
	visible := make([]models.Hotspot, 0, len(scene.Hotspots))
	for _, h := range scene.Hotspots {
		if EvaluateCondition(h.Condition, flags) {
			visible = append(visible, h)
		}
	}
	return visible
}

// ResolveHotspot turns a click on a hotspot of the given scene into a
// transition. Clicks on unknown hotspots are content-reference errors;
// clicks on hotspots whose condition fails are rejected as locked, so a
// stale or forged click can never bypass gating.
func (n *SceneNavigator) ResolveHotspot(scene *models.Scene, hotspotID string, flags FlagSet) (*HotspotResolution, *models.Hotspot, error) {
	var hotspot *models.Hotspot
	for i := range scene.Hotspots {
		if scene.Hotspots[i].ID == hotspotID {
			hotspot = &scene.Hotspots[i]
			break
		}
	}
	if hotspot == nil {
		return nil, nil, &ContentRefError{Kind: "hotspot", ID: hotspotID}
	}
	if !EvaluateCondition(hotspot.Condition, flags) {
		return nil, nil, ErrLockedHotspot
	}

	res := &HotspotResolution{}
	switch hotspot.Kind {
	case models.HotspotDialog:
		if _, ok := n.bundle.Dialog(hotspot.TargetID); !ok {
			return nil, nil, &ContentRefError{Kind: "dialog", ID: hotspot.TargetID}
		}
		res.StartDialogID = hotspot.TargetID
	case models.HotspotScene:
		if _, ok := n.bundle.Scene(hotspot.TargetID); !ok {
			return nil, nil, &ContentRefError{Kind: "scene", ID: hotspot.TargetID}
		}
		res.ChangeSceneID = hotspot.TargetID
	case models.HotspotItem:
		res.PickupItemID = hotspot.TargetID
	case models.HotspotAction:
		if _, ok := n.bundle.Action(hotspot.TargetID); !ok {
			return nil, nil, &ContentRefError{Kind: "action", ID: hotspot.TargetID}
		}
		res.RunActionID = hotspot.TargetID
	default:
		return nil, nil, &ContentRefError{Kind: "hotspot", ID: hotspotID}
	}
	return res, hotspot, nil
}
