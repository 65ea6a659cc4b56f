package engine

import (
	"math"
	"strings"
	"time"

	"github.com/valpere/agentran/internal/manager"
	"github.com/valpere/agentran/internal/pipeline"
)

type EventKind int

const (
	SessionStarted EventKind = iota
	DecisionMade
	StageStarted
	ChunkFinished
	SessionFinished
)

// Event reports session progress. Chunk is 0-based; Decision is set only
// on DecisionMade.
type Event struct {
	Kind     EventKind
	Chunk    int
	Total    int
	Stage    pipeline.Stage
	Decision *manager.Decision
}

// Separator joins finalized chunk texts.
const Separator = "\n"

// ChunkResult is a completed chunk. Unit is the structural unit of the
// source document the chunk came from.
type ChunkResult struct {
	Number   int             `json:"chunk_number"`
	Unit     int             `json:"-"`
	Original string          `json:"original_text"`
	Steps    []pipeline.Step `json:"steps"`
}

func (c ChunkResult) Final() string {
	if len(c.Steps) == 0 {
		return ""
	}
	return c.Steps[len(c.Steps)-1].Result
}

// Session is a completed translation session.
type Session struct {
	SourceLang  string
	TargetLang  string
	Decision    manager.Decision
	Chunks      []ChunkResult
	TotalTokens int
	Elapsed     time.Duration
}

// Text joins the finalized chunk texts in chunk order.
func (s *Session) Text() string {
	parts := make([]string, len(s.Chunks))
	for i, c := range s.Chunks {
		parts[i] = c.Final()
	}
	return strings.Join(parts, Separator)
}

// Result is the serialized session record.
type Result struct {
	TotalTime           float64       `json:"total_time"`
	TotalTokens         int           `json:"total_tokens"`
	TranslationType     string        `json:"translation_type"`
	SelectedTranslators []string      `json:"selected_translators"`
	StyleGuidelines     []string      `json:"style_guidelines"`
	QualityRequirements []string      `json:"quality_requirements"`
	ManagerReasoning    string        `json:"manager_reasoning"`
	Chunks              []ChunkResult `json:"chunks"`
}

func (s *Session) Result() Result {
	return Result{
		TotalTime:           math.Round(s.Elapsed.Seconds()*100) / 100,
		TotalTokens:         s.TotalTokens,
		TranslationType:     s.Decision.TranslationType,
		SelectedTranslators: orEmpty(s.Decision.Profiles),
		StyleGuidelines:     orEmpty(s.Decision.StyleGuidelines),
		QualityRequirements: orEmpty(s.Decision.QualityRequirements),
		ManagerReasoning:    s.Decision.Reasoning,
		Chunks:              s.Chunks,
	}
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
