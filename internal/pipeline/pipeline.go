// Package pipeline runs the four-stage refinement pass over a single chunk:
// Draft by the selected specialist, Reflect on the draft, Revise with the
// critique, then TerminologyCheck against the session glossary. Each stage
// reads only the output of the one before it.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/valpere/agentran/internal/failure"
	"github.com/valpere/agentran/internal/gateway"
	"github.com/valpere/agentran/internal/manager"
	"github.com/valpere/agentran/internal/postprocess"
	"github.com/valpere/agentran/internal/registry"
	"github.com/valpere/agentran/internal/terminology"
)

const (
	reviewerRole        = "You are an expert and experienced translator who knows many languages."
	reviewerTemperature = 0.8
)

// Plan is the Draft assignment shared by every chunk of a session.
type Plan struct {
	Profile      registry.Profile
	Guidelines   []string
	Requirements []string
}

// NewPlan turns a manager decision into a Plan: a single selected profile
// drafts alone; several are folded into Master carrying the decision's
// guidelines and requirements.
func NewPlan(reg *registry.Registry, d manager.Decision) (Plan, error) {
	name := registry.MasterName
	if len(d.Profiles) == 1 {
		name = d.Profiles[0]
	}
	p, err := reg.Get(name)
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		Profile:      p,
		Guidelines:   d.StyleGuidelines,
		Requirements: d.QualityRequirements,
	}, nil
}

// Meter receives the token cost of every model call.
type Meter interface {
	Add(stage Stage, tokens int)
}

type Config struct {
	Gateway     gateway.Gateway
	Plan        Plan
	Terminology terminology.Map
	SourceLang  string
	TargetLang  string
	Meter       Meter
	Logger      *zap.Logger

	// OnStage, when set, is called before each stage starts.
	OnStage func(chunk int, stage Stage)
}

// Runner is safe for concurrent use once built; all per-chunk state lives
// in the Record being produced.
type Runner struct {
	cfg Config
}

func New(cfg Config) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Runner{cfg: cfg}
}

// Chunk is the pipeline's view of one chunk. Notes are appended to the
// Draft prompt.
type Chunk struct {
	Index int
	Text  string
	Notes []string
}

// Run executes the stages in order. The first failed call ends the run with
// an ExternalCall failure naming the stage and the 1-based chunk number;
// the partial record is discarded.
func (r *Runner) Run(ctx context.Context, c Chunk) (Record, error) {
	rec := Record{ChunkIndex: c.Index}

	draft, err := r.step(ctx, c.Index, Draft, func() (gateway.Reply, error) {
		return registry.Translate(ctx, r.cfg.Gateway, r.cfg.Plan.Profile, registry.Input{
			Text:         c.Text,
			SourceLang:   r.cfg.SourceLang,
			TargetLang:   r.cfg.TargetLang,
			Guidelines:   r.cfg.Plan.Guidelines,
			Requirements: r.cfg.Plan.Requirements,
			Notes:        c.Notes,
		})
	})
	if err != nil {
		return Record{}, err
	}
	draft.Result = postprocess.CleanOr(draft.Result)
	rec.append(draft)

	critique, err := r.step(ctx, c.Index, Reflect, func() (gateway.Reply, error) {
		return r.review(ctx, reflectPrompt(c.Text, draft.Result))
	})
	if err != nil {
		return Record{}, err
	}
	rec.append(critique)

	revised, err := r.step(ctx, c.Index, Revise, func() (gateway.Reply, error) {
		return r.review(ctx, revisePrompt(c.Text, draft.Result, critique.Result))
	})
	if err != nil {
		return Record{}, err
	}
	revised.Result = postprocess.CleanOr(revised.Result)
	rec.append(revised)

	if r.cfg.Terminology.IsEmpty() {
		rec.append(Step{Stage: TerminologyCheck, Result: revised.Result, Skipped: true})
		return rec, nil
	}

	r.cfg.Logger.Debug("glossary terms in chunk",
		zap.Int("chunk", c.Index+1),
		zap.Int("present", len(r.cfg.Terminology.Present(c.Text))),
	)
	checked, err := r.step(ctx, c.Index, TerminologyCheck, func() (gateway.Reply, error) {
		return r.review(ctx, r.cfg.Terminology.CheckPrompt(revised.Result, r.cfg.SourceLang, r.cfg.TargetLang))
	})
	if err != nil {
		return Record{}, err
	}
	checked.Result = postprocess.CleanOr(checked.Result)
	rec.append(checked)

	return rec, nil
}

func (r *Runner) step(ctx context.Context, chunk int, stage Stage, call func() (gateway.Reply, error)) (Step, error) {
	if r.cfg.OnStage != nil {
		r.cfg.OnStage(chunk, stage)
	}
	r.cfg.Logger.Debug("stage started", zap.Int("chunk", chunk+1), zap.Stringer("stage", stage))

	if err := ctx.Err(); err != nil {
		return Step{}, failure.New(failure.ExternalCall, fmt.Sprintf("%s chunk %d", stage, chunk+1), err)
	}

	reply, err := call()
	if err != nil {
		r.cfg.Logger.Error("stage failed",
			zap.Int("chunk", chunk+1),
			zap.Stringer("stage", stage),
			zap.Error(err),
		)
		return Step{}, failure.New(failure.ExternalCall, fmt.Sprintf("%s chunk %d", stage, chunk+1), err)
	}

	if r.cfg.Meter != nil {
		r.cfg.Meter.Add(stage, reply.Tokens)
	}
	return Step{Stage: stage, Result: reply.Text, Tokens: reply.Tokens}, nil
}

func (r *Runner) review(ctx context.Context, prompt string) (gateway.Reply, error) {
	return r.cfg.Gateway.Call(ctx, []gateway.Message{
		gateway.System(reviewerRole),
		gateway.User(prompt),
	}, gateway.Options{Temperature: reviewerTemperature})
}

func reflectPrompt(original, translation string) string {
	return fmt.Sprintf(`Review the following translation and provide detailed feedback on:
1. Accuracy of meaning
2. Natural flow and readability
3. Cultural appropriateness
4. Technical terminology (if any)
5. Areas for improvement

Original text:
%s

Translation:
%s

Feedback:`, original, translation)
}

func revisePrompt(original, draft, critique string) string {
	return fmt.Sprintf(`Based on the following feedback, improve the translation while maintaining accuracy and natural flow. Do not add any additional text or comments.

Original text:
%s

Initial translation:
%s

Feedback:
%s

Improved translation:`, original, draft, critique)
}
