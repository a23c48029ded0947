// Package briefing asks Gemini for a short route plan for a single pattern.
// It is optional: the viewer works without it.
package briefing

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/pattern-viewer/internal/models"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/route_briefing.txt
var routeBriefingPrompt string

var routeBriefingTmpl = template.Must(template.New("route_briefing").Parse(routeBriefingPrompt))

// Briefing is the parsed model response.
type Briefing struct {
	PatternID string   `yaml:"-"`
	Summary   string   `yaml:"summary"`
	Night1    []string `yaml:"night_1"`
	Night2    []string `yaml:"night_2"`
	Tips      []string `yaml:"tips"`
}

type Engine struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewEngine(ctx context.Context, apiKey, modelName string) (*Engine, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &Engine{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

func (e *Engine) Close() {
	e.client.Close()
}

// Brief requests a route plan for rec.
func (e *Engine) Brief(ctx context.Context, rec models.Record) (*Briefing, error) {
	prompt, err := renderPrompt(rec)
	if err != nil {
		return nil, err
	}

	resp, err := e.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content returned from Gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response type from Gemini")
	}

	b, err := parseBriefing(string(text))
	if err != nil {
		return nil, err
	}
	b.PatternID = rec.ID
	return b, nil
}

func renderPrompt(rec models.Record) (string, error) {
	var buf bytes.Buffer
	if err := routeBriefingTmpl.Execute(&buf, rec); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func parseBriefing(text string) (*Briefing, error) {
	cleanYAML := strings.TrimSpace(text)
	cleanYAML = strings.TrimPrefix(cleanYAML, "```yaml")
	cleanYAML = strings.TrimPrefix(cleanYAML, "```")
	cleanYAML = strings.TrimSuffix(cleanYAML, "```")

	var b Briefing
	if err := yaml.Unmarshal([]byte(cleanYAML), &b); err != nil {
		return nil, fmt.Errorf("failed to parse briefing YAML: %w\nOutput was: %s", err, cleanYAML)
	}
	if b.Summary == "" && len(b.Night1) == 0 && len(b.Night2) == 0 {
		return nil, errors.New("briefing response was empty")
	}
	return &b, nil
}

// Markdown formats b for the detail pane.
func (b *Briefing) Markdown() string {
	var sb strings.Builder
	sb.WriteString(b.Summary + "\n")
	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		sb.WriteString("\n### " + title + "\n\n")
		for _, l := range lines {
			sb.WriteString("- " + l + "\n")
		}
	}
	section("Night 1", b.Night1)
	section("Night 2", b.Night2)
	section("Tips", b.Tips)
	return sb.String()
}
