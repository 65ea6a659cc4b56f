package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/valpere/agentran/internal/gateway"
)

// Input is what a specialist translates. Guidelines and Requirements are
// read only by the dynamic profile; Notes are extra instructions appended to
// every prompt (for example, keeping placeholders intact).
type Input struct {
	Text         string
	SourceLang   string
	TargetLang   string
	Guidelines   []string
	Requirements []string
	Notes        []string
}

// Translate runs profile p over in with a single gateway call. Profiles
// differ only in prompt content and temperature.
func Translate(ctx context.Context, gw gateway.Gateway, p Profile, in Input) (gateway.Reply, error) {
	messages := []gateway.Message{
		gateway.System(p.SystemRole),
		gateway.User(p.Prompt(in)),
	}
	return gw.Call(ctx, messages, gateway.Options{Temperature: p.Temperature})
}

// Prompt builds the user prompt for in.
func (p Profile) Prompt(in Input) string {
	var sb strings.Builder

	switch {
	case p.Dynamic:
		sb.WriteString(fmt.Sprintf("Translate the following text from %s to %s following these specific guidelines:\n\n", in.SourceLang, in.TargetLang))
		sb.WriteString("Text to translate:\n")
		sb.WriteString(in.Text)
		sb.WriteString("\n\nStyle Guidelines:\n")
		sb.WriteString(bullets(in.Guidelines))
		sb.WriteString("\n\nQuality Requirements:\n")
		sb.WriteString(bullets(in.Requirements))
		sb.WriteString("\n\nPlease provide a translation that:\n")
		sb.WriteString(numbered([]string{
			"Follows all style guidelines precisely",
			"Meets all quality requirements",
			"Maintains the original meaning and intent",
			"Adapts appropriately to the target language and culture",
		}))
	case len(p.Guidelines) > 0:
		sb.WriteString(fmt.Sprintf("Translate the following text from %s to %s with a focus on %s:\n\n", in.SourceLang, in.TargetLang, p.Focus))
		sb.WriteString("Text to translate:\n")
		sb.WriteString(in.Text)
		sb.WriteString("\n\nGuidelines:\n")
		sb.WriteString(numbered(p.Guidelines))
	default:
		sb.WriteString(fmt.Sprintf("Translate the following text from %s to %s.\n", in.SourceLang, in.TargetLang))
		sb.WriteString("Maintain the original meaning, tone, and style while ensuring natural flow in the target language. Do not add any additional text or comments.\n\n")
		sb.WriteString("Text to translate:\n")
		sb.WriteString(in.Text)
	}

	for _, note := range in.Notes {
		sb.WriteString("\n\n")
		sb.WriteString(note)
	}
	sb.WriteString("\n\nTranslation:")
	return sb.String()
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func numbered(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}
