package content

import (
	"strings"
	"testing"

	"wayfarer/internal/models"
)

func validDoc() *Document {
	return &Document{
		StartScene: "port",
		Scenes: []models.Scene{
			{
				ID:    "port",
				Phase: models.PhasePlanning,
				Hotspots: []models.Hotspot{
					{ID: "h1", Kind: models.HotspotDialog, TargetID: "d1"},
					{ID: "h2", Kind: models.HotspotScene, TargetID: "pier"},
					{ID: "h3", Kind: models.HotspotItem, TargetID: "rope"},
					{ID: "h4", Kind: models.HotspotAction, TargetID: "a1"},
				},
			},
			{ID: "pier", Phase: models.PhaseDeparture, EntryDialogID: "d1"},
		},
		Dialogs: []models.DialogNode{
			{ID: "d1", SpeakerID: models.SpeakerNarrator, Text: "Gulls wheel overhead.", Choices: []models.DialogChoice{
				{ID: "c1", Text: "Go", TargetSceneID: "pier"},
				{ID: "c2", Text: "Stay", NextNodeID: "d2"},
			}},
			{ID: "d2", SpeakerID: models.SpeakerNarrator, Text: "The tide turns."},
			{ID: "d3", SpeakerID: models.SpeakerPlayer, Generated: true, Prompt: "a thought"},
		},
		Characters: []models.Character{
			{ID: "keeper", Name: "Keeper", Type: models.CharacterNPC},
		},
		Actions: []models.Action{{ID: "a1", SetFlags: []string{"done"}}},
	}
}

func TestNewValidDocument(t *testing.T) {
	b, err := New(validDoc())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.StartSceneID != "port" {
		t.Errorf("start scene = %q", b.StartSceneID)
	}
	ids := b.SceneIDs()
	if len(ids) != 2 || ids[0] != "port" || ids[1] != "pier" {
		t.Errorf("scene order = %v", ids)
	}
	if _, ok := b.Dialog("d3"); !ok {
		t.Error("dialog d3 missing")
	}
}

func TestNewRejectsBrokenDocuments(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Document)
		wantErr string
	}{
		{
			"missing start scene",
			func(d *Document) { d.StartScene = "" },
			"no start_scene",
		},
		{
			"dangling start scene",
			func(d *Document) { d.StartScene = "atlantis" },
			"start_scene",
		},
		{
			"duplicate scene id",
			func(d *Document) { d.Scenes = append(d.Scenes, models.Scene{ID: "port", Phase: models.PhasePlanning}) },
			"duplicate scene",
		},
		{
			"duplicate dialog id",
			func(d *Document) {
				d.Dialogs = append(d.Dialogs, models.DialogNode{ID: "d1", SpeakerID: "narrator", Text: "x"})
			},
			"duplicate dialog",
		},
		{
			"unknown phase",
			func(d *Document) { d.Scenes[0].Phase = "limbo" },
			"unknown phase",
		},
		{
			"dangling entry dialog",
			func(d *Document) { d.Scenes[1].EntryDialogID = "d404" },
			"entry dialog",
		},
		{
			"hotspot without target",
			func(d *Document) { d.Scenes[0].Hotspots[0].TargetID = "" },
			"no target",
		},
		{
			"hotspot with unknown kind",
			func(d *Document) { d.Scenes[0].Hotspots[0].Kind = "portal" },
			"unknown kind",
		},
		{
			"dialog hotspot dangling target",
			func(d *Document) { d.Scenes[0].Hotspots[0].TargetID = "d404" },
			"unknown dialog",
		},
		{
			"scene hotspot dangling target",
			func(d *Document) { d.Scenes[0].Hotspots[1].TargetID = "s404" },
			"unknown scene",
		},
		{
			"action hotspot dangling target",
			func(d *Document) { d.Scenes[0].Hotspots[3].TargetID = "a404" },
			"unknown action",
		},
		{
			"choice dangling next node",
			func(d *Document) { d.Dialogs[0].Choices[1].NextNodeID = "d404" },
			"next node",
		},
		{
			"choice dangling target scene",
			func(d *Document) { d.Dialogs[0].Choices[0].TargetSceneID = "s404" },
			"target scene",
		},
		{
			"dialog dangling next node",
			func(d *Document) { d.Dialogs[1].NextNodeID = "d404" },
			"next node",
		},
		{
			"generated without prompt",
			func(d *Document) { d.Dialogs[2].Prompt = "" },
			"no prompt",
		},
		{
			"character with unknown type",
			func(d *Document) { d.Characters[0].Type = "chorus" },
			"unknown type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			tt.mutate(doc)
			_, err := New(doc)
			if err == nil {
				t.Fatal("broken document accepted")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseYAML(t *testing.T) {
	src := `
start_scene: port
scenes:
  - id: port
    phase: planning
    name: Old Port
    hotspots:
      - id: h_board
        kind: dialog
        target: d_greet
        rect: { x: 10, y: 20, width: 30, height: 15 }
        condition: ticket
dialogs:
  - id: d_greet
    speaker: narrator
    text: All aboard.
`
	b, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	scene, ok := b.Scene("port")
	if !ok {
		t.Fatal("scene missing")
	}
	h := scene.Hotspots[0]
	if h.TargetID != "d_greet" || h.Condition != "ticket" {
		t.Errorf("hotspot = %+v", h)
	}
	if h.Rect.Width != 30 {
		t.Errorf("rect = %+v", h.Rect)
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("scenes: [not: {closed")); err == nil {
		t.Error("malformed yaml accepted")
	}
}
