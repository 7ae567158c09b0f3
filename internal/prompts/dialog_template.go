package prompts

import (
	"bytes"
	"fmt"
	"text/template"
)

// DialogPromptData holds the variables one generated dialog line renders
// its prompt from.
type DialogPromptData struct {
	SceneName        string
	SceneDescription string
	SpeakerName      string
	Prompt           string
	Flags            []string
	Memories         []string
}

const systemTemplate = `You are the narrative voice of a travel visual novel.
Write a single spoken dialog line for the character named below. Stay in
voice, keep it under three sentences and never break the fourth wall.
Respond with the dialog text only, no quotation marks and no stage
directions.`

const userTemplate = `Scene: {{.SceneName}}
{{- if .SceneDescription}}
Setting: {{.SceneDescription}}
{{- end}}
{{- if .SpeakerName}}
Speaker: {{.SpeakerName}}
{{- end}}
{{- if .Flags}}
Story progress so far: {{range $i, $f := .Flags}}{{if $i}}, {{end}}{{$f}}{{end}}
{{- end}}
{{- if .Memories}}
Moments the traveler remembers: {{range $i, $m := .Memories}}{{if $i}}, {{end}}{{$m}}{{end}}
{{- end}}

Direction: {{.Prompt}}`

// TemplateEngine renders generation prompts for dialog lines.
type TemplateEngine struct {
	user *template.Template
}

// NewTemplateEngine parses the built-in templates.
func NewTemplateEngine() (*TemplateEngine, error) {
	user, err := template.New("dialog_user").Parse(userTemplate)
	if err != nil {
		return nil, fmt.Errorf("prompts: failed to parse template: %w", err)
	}
	return &TemplateEngine{user: user}, nil
}

// BuildDialogPrompt renders the system and user messages for one request.
func (e *TemplateEngine) BuildDialogPrompt(data *DialogPromptData) (system, user string, err error) {
	var buf bytes.Buffer
	if err := e.user.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("prompts: failed to render: %w", err)
	}
	return systemTemplate, buf.String(), nil
}
