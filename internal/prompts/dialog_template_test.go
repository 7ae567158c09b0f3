package prompts

import (
	"strings"
	"testing"
)

func TestBuildDialogPrompt(t *testing.T) {
	e, err := NewTemplateEngine()
	if err != nil {
		t.Fatalf("NewTemplateEngine: %v", err)
	}

	system, user, err := e.BuildDialogPrompt(&DialogPromptData{
		SceneName:        "Gate 14",
		SceneDescription: "Rows of seats, a delayed departure board.",
		SpeakerName:      "Mara",
		Prompt:           "a reassuring word about delays",
		Flags:            []string{"checked_in", "packed"},
		Memories:         []string{"Packed and ready"},
	})
	if err != nil {
		t.Fatalf("BuildDialogPrompt: %v", err)
	}

	if !strings.Contains(system, "dialog text only") {
		t.Errorf("system prompt = %q", system)
	}
	for _, want := range []string{
		"Scene: Gate 14",
		"Speaker: Mara",
		"checked_in, packed",
		"Packed and ready",
		"Direction: a reassuring word about delays",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestBuildDialogPromptOmitsEmptySections(t *testing.T) {
	e, err := NewTemplateEngine()
	if err != nil {
		t.Fatal(err)
	}
	_, user, err := e.BuildDialogPrompt(&DialogPromptData{
		SceneName: "Gate 14",
		Prompt:    "a stray thought",
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, absent := range []string{"Speaker:", "Story progress", "remembers"} {
		if strings.Contains(user, absent) {
			t.Errorf("user prompt has empty section %q:\n%s", absent, user)
		}
	}
}
