// Package manager is the style manager: one model call per session that
// decides which specialist profiles translate the document and which style
// guidelines and quality requirements they follow.
package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/valpere/agentran/internal/failure"
	"github.com/valpere/agentran/internal/gateway"
	"github.com/valpere/agentran/internal/registry"
)

const (
	// Auto asks the manager to pick the style from a sample of the text.
	Auto = "auto"

	// SampleLimit bounds the sample sent on the auto path, in runes.
	SampleLimit = 1000

	systemRole  = "You are an experienced Translation Project Manager who specializes in coordinating translation projects."
	temperature = 0.7
	remapNote   = "\nNote: Some requested translators were mapped to available specialists or the Master Translator."
)

var autoAliases = []string{Auto, "auto-detect", "help me to decide"}

// IsAuto reports whether requestedType is one of the auto sentinels.
func IsAuto(requestedType string) bool {
	t := strings.ToLower(strings.TrimSpace(requestedType))
	for _, alias := range autoAliases {
		if t == alias {
			return true
		}
	}
	return false
}

type Request struct {
	RequestedType string
	Brief         string
	Sample        string
}

// autoPath reports whether the decision is taken from the sample rather
// than the brief.
func (r Request) autoPath() bool {
	return IsAuto(r.RequestedType) || (strings.TrimSpace(r.Brief) == "" && r.Sample != "")
}

// Decision is the session-wide routing outcome.
type Decision struct {
	Profiles            []string `json:"selected_translators"`
	StyleGuidelines     []string `json:"style_guidelines"`
	QualityRequirements []string `json:"quality_requirements"`
	DetectedStyle       string   `json:"detected_style,omitempty"`
	Reasoning           string   `json:"reasoning"`

	// TranslationType is the label the session runs under: the detected
	// style when the auto path found one, the requested type otherwise.
	TranslationType string `json:"translation_type"`
	AutoDetected    bool   `json:"auto_detected"`

	// Fallback is set when the reply could not be parsed and ParseError
	// holds the classified failure.
	Fallback   bool  `json:"fallback"`
	ParseError error `json:"-"`

	Tokens int `json:"tokens"`
}

// DefaultDecision is returned whenever the manager's reply is unusable.
func DefaultDecision() Decision {
	return Decision{
		Profiles:            []string{registry.GeneralName},
		StyleGuidelines:     []string{"Maintain professional tone", "Ensure accuracy"},
		QualityRequirements: []string{"High accuracy", "Natural flow"},
		Reasoning:           "Using default settings due to parsing error",
	}
}

type Manager struct {
	gw     gateway.Gateway
	reg    *registry.Registry
	logger *zap.Logger
}

func New(gw gateway.Gateway, reg *registry.Registry, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{gw: gw, reg: reg, logger: logger}
}

// Decide issues exactly one model call. A gateway failure is returned as an
// ExternalCall failure; an unparseable reply yields DefaultDecision with
// Fallback set and no error.
func (m *Manager) Decide(ctx context.Context, req Request) (Decision, error) {
	auto := req.autoPath()

	var prompt string
	if auto {
		prompt = m.autoPrompt(clip(req.Sample, SampleLimit))
	} else {
		prompt = m.briefPrompt(req.RequestedType, req.Brief)
	}

	reply, err := m.gw.Call(ctx, []gateway.Message{
		gateway.System(systemRole),
		gateway.User(prompt),
	}, gateway.Options{Temperature: temperature, JSON: true})
	if err != nil {
		return Decision{}, failure.New(failure.ExternalCall, "style manager", err)
	}

	decision, err := parse(reply.Text)
	if err != nil {
		m.logger.Warn("style manager reply unusable, using default decision",
			zap.Error(err),
			zap.Int("reply_len", len(reply.Text)),
		)
		decision = DefaultDecision()
		decision.Fallback = true
		decision.ParseError = err
	} else {
		m.resolve(&decision)
	}

	decision.Tokens = reply.Tokens
	decision.TranslationType = req.RequestedType
	if auto && decision.DetectedStyle != "" {
		decision.TranslationType = decision.DetectedStyle
		decision.AutoDetected = true
	}
	return decision, nil
}

// resolve maps every returned profile name onto the registry, collapsing
// duplicates. An empty selection becomes Master.
func (m *Manager) resolve(d *Decision) {
	remapped := false
	seen := make(map[string]bool)
	var names []string

	for _, name := range d.Profiles {
		p, exact := m.reg.Resolve(name)
		if !exact {
			remapped = true
		}
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		names = append(names, p.Name)
	}
	if len(names) == 0 {
		names = []string{registry.MasterName}
		remapped = true
	}

	d.Profiles = names
	if remapped {
		d.Reasoning += remapNote
	}
}

type reply struct {
	DetectedStyle       *string  `json:"detected_style"`
	SelectedTranslators []string `json:"selected_translators"`
	StyleGuidelines     []string `json:"style_guidelines"`
	QualityRequirements []string `json:"quality_requirements"`
	Reasoning           *string  `json:"reasoning"`
}

func parse(text string) (Decision, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return Decision{}, failure.Newf(failure.ManagerParse, "parse manager reply", "no JSON object found in reply")
	}

	var r reply
	if err := json.Unmarshal([]byte(text[start:end+1]), &r); err != nil {
		return Decision{}, failure.New(failure.ManagerParse, "parse manager reply", err)
	}

	d := Decision{
		Profiles:            r.SelectedTranslators,
		StyleGuidelines:     r.StyleGuidelines,
		QualityRequirements: r.QualityRequirements,
		Reasoning:           "No specific reasoning provided",
	}
	if r.Reasoning != nil {
		d.Reasoning = *r.Reasoning
	}
	if r.DetectedStyle != nil {
		d.DetectedStyle = strings.TrimSpace(*r.DetectedStyle)
	}
	return d, nil
}

func (m *Manager) autoPrompt(sample string) string {
	var sb strings.Builder
	sb.WriteString("As a Translation Project Manager, analyze the following text and determine its style and appropriate translation approach:\n\n")
	sb.WriteString("Text to analyze:\n")
	sb.WriteString(sample)
	sb.WriteString("\n\nAvailable translators:\n")
	sb.WriteString(strings.Join(m.reg.Keys(), ", "))
	sb.WriteString(`

Please provide:
1. The detected style/type of the text (choose from available types or specify if none match)
2. A list of specialized translators needed (prioritize using available translators)
3. Specific style guidelines to follow
4. Quality requirements and standards to maintain
5. Detailed reasoning for your decisions, including why you chose this particular translator type

Format your response as a JSON object with the following structure:
{
    "detected_style": "style_name",
    "selected_translators": ["translator1", "translator2"],
    "style_guidelines": ["guideline1", "guideline2"],
    "quality_requirements": ["requirement1", "requirement2"],
    "reasoning": "explanation of decisions"
}`)
	return sb.String()
}

func (m *Manager) briefPrompt(requestedType, brief string) string {
	var sb strings.Builder
	sb.WriteString("As a Translation Project Manager, analyze the following translation brief and determine the best approach:\n\n")
	sb.WriteString(fmt.Sprintf("Translation Type: %s\n", requestedType))
	sb.WriteString(fmt.Sprintf("Brief: %s\n", brief))
	sb.WriteString("\nAvailable translators:\n")
	sb.WriteString(strings.Join(m.reg.Keys(), ", "))
	sb.WriteString(`

Please provide:
1. A list of specialized translators needed (prioritize using available translators)
2. Specific style guidelines to follow
3. Quality requirements and standards to maintain
4. Detailed reasoning for your decisions

Format your response as a JSON object with the following structure:
{
    "selected_translators": ["translator1", "translator2"],
    "style_guidelines": ["guideline1", "guideline2"],
    "quality_requirements": ["requirement1", "requirement2"],
    "reasoning": "explanation of decisions"
}`)
	return sb.String()
}

func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
