package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/agentran/internal/failure"
	"github.com/valpere/agentran/internal/gateway"
	"github.com/valpere/agentran/internal/manager"
	"github.com/valpere/agentran/internal/registry"
	"github.com/valpere/agentran/internal/terminology"
)

type meter struct {
	mu     sync.Mutex
	total  int
	stages []Stage
}

func (m *meter) Add(stage Stage, tokens int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total += tokens
	m.stages = append(m.stages, stage)
}

// stageScript answers each call with "<stage n>" and costs n+1 tokens.
func stageScript() *gateway.Script {
	return &gateway.Script{Respond: func(n int, _ []gateway.Message, _ gateway.Options) (gateway.Reply, error) {
		return gateway.Reply{Text: fmt.Sprintf("out %d", n), Tokens: n + 1}, nil
	}}
}

func legalPlan(t *testing.T) Plan {
	t.Helper()
	reg, err := registry.New(nil)
	require.NoError(t, err)
	plan, err := NewPlan(reg, manager.Decision{Profiles: []string{"Legal Translator"}})
	require.NoError(t, err)
	return plan
}

func TestStage_String(t *testing.T) {
	var names []string
	for _, s := range Stages {
		names = append(names, s.String())
	}
	assert.Equal(t, []string{"Draft", "Reflect", "Revise", "TerminologyCheck"}, names)
}

func TestNewPlan(t *testing.T) {
	reg, err := registry.New(nil)
	require.NoError(t, err)

	single, err := NewPlan(reg, manager.Decision{Profiles: []string{"Medical Translator"}})
	require.NoError(t, err)
	assert.Equal(t, "Medical Translator", single.Profile.Name)

	multi, err := NewPlan(reg, manager.Decision{
		Profiles:            []string{"Legal Translator", "Business Translator"},
		StyleGuidelines:     []string{"formal"},
		QualityRequirements: []string{"exact"},
	})
	require.NoError(t, err)
	assert.Equal(t, registry.MasterName, multi.Profile.Name)
	assert.Equal(t, []string{"formal"}, multi.Guidelines)
	assert.Equal(t, []string{"exact"}, multi.Requirements)

	_, err = NewPlan(reg, manager.Decision{Profiles: []string{"Poetry Translator"}})
	assert.ErrorIs(t, err, failure.ErrInternal)
}

func TestRun_EmptyGlossarySkipsTerminologyCheck(t *testing.T) {
	gw := stageScript()
	m := &meter{}
	r := New(Config{Gateway: gw, Plan: legalPlan(t), SourceLang: "English", TargetLang: "German", Meter: m})

	rec, err := r.Run(context.Background(), Chunk{Index: 0, Text: "The tenant shall pay rent."})
	require.NoError(t, err)

	require.True(t, rec.Complete())
	assert.Len(t, gw.Calls(), 3)
	assert.Equal(t, TerminologyCheck, rec.Steps[3].Stage)
	assert.True(t, rec.Steps[3].Skipped)
	assert.Equal(t, rec.Steps[2].Result, rec.Final())
	assert.Equal(t, "out 2", rec.Final())
	assert.Equal(t, 1+2+3, m.total)
	assert.Equal(t, m.total, rec.Tokens())
	assert.Equal(t, []Stage{Draft, Reflect, Revise}, m.stages)
}

func TestRun_StageOutputsFeedForward(t *testing.T) {
	gw := stageScript()
	terms := terminology.New(map[string]string{"Acme": "Acmé"})
	r := New(Config{Gateway: gw, Plan: legalPlan(t), Terminology: terms, SourceLang: "English", TargetLang: "French"})

	rec, err := r.Run(context.Background(), Chunk{Index: 1, Text: "Acme signs the lease.", Notes: []string{"NOTE"}})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.ChunkIndex)

	calls := gw.Calls()
	require.Len(t, calls, 4)

	draft := calls[0]
	assert.Contains(t, draft.Messages[0].Content, "Legal Translation Specialist")
	assert.InDelta(t, 0.65, draft.Options.Temperature, 1e-9)
	assert.Contains(t, draft.Prompt(), "Acme signs the lease.")
	assert.Contains(t, draft.Prompt(), "NOTE")

	reflect := calls[1].Prompt()
	assert.Contains(t, reflect, "Original text:\nAcme signs the lease.\n\nTranslation:\nout 0\n\nFeedback:")
	assert.InDelta(t, 0.8, calls[1].Options.Temperature, 1e-9)

	revise := calls[2].Prompt()
	assert.Contains(t, revise, "Initial translation:\nout 0\n\nFeedback:\nout 1\n\nImproved translation:")

	check := calls[3].Prompt()
	assert.Contains(t, check, "Acme: Acmé")
	assert.Contains(t, check, "Translation to check:\nout 2")

	assert.Equal(t, "out 3", rec.Final())
}

func TestRun_TerminologyCheckRecordedWhenUnchanged(t *testing.T) {
	gw := &gateway.Script{Respond: func(n int, _ []gateway.Message, _ gateway.Options) (gateway.Reply, error) {
		return gateway.Reply{Text: "Acme signe le bail.", Tokens: 5}, nil
	}}
	terms := terminology.New(map[string]string{"Acme": "Acmé"})
	r := New(Config{Gateway: gw, Plan: legalPlan(t), Terminology: terms, SourceLang: "English", TargetLang: "French"})

	rec, err := r.Run(context.Background(), Chunk{Text: "Acme signs the lease."})
	require.NoError(t, err)

	assert.Len(t, gw.Calls(), 4)
	assert.False(t, rec.Steps[3].Skipped)
	assert.Equal(t, "Acme signe le bail.", rec.Steps[3].Result)
	assert.Equal(t, 20, rec.Tokens())
}

func TestRun_CleansTranslationsButNotCritique(t *testing.T) {
	replies := []string{
		"Here's the translation: \"Hallo\"",
		"Translation: fine, but see <b>note</b>",
		"<think>hmm</think>Improved translation: Hallo!",
	}
	gw := &gateway.Script{Respond: func(n int, _ []gateway.Message, _ gateway.Options) (gateway.Reply, error) {
		return gateway.Reply{Text: replies[n]}, nil
	}}
	r := New(Config{Gateway: gw, Plan: legalPlan(t), SourceLang: "English", TargetLang: "German"})

	rec, err := r.Run(context.Background(), Chunk{Text: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hallo", rec.Steps[0].Result)
	assert.Equal(t, replies[1], rec.Steps[1].Result)
	assert.Equal(t, "Hallo!", rec.Final())
}

func TestRun_FailureAbortsWithStageContext(t *testing.T) {
	gw := &gateway.Script{Respond: func(n int, _ []gateway.Message, _ gateway.Options) (gateway.Reply, error) {
		if n == 1 {
			return gateway.Reply{}, errors.New("connection reset by peer")
		}
		return gateway.Reply{Text: "ok", Tokens: 1}, nil
	}}
	var seen []Stage
	r := New(Config{
		Gateway:    gw,
		Plan:       legalPlan(t),
		SourceLang: "English",
		TargetLang: "German",
		OnStage:    func(_ int, s Stage) { seen = append(seen, s) },
	})

	rec, err := r.Run(context.Background(), Chunk{Index: 1, Text: "Hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrExternalCall)
	assert.Contains(t, err.Error(), "Reflect chunk 2")
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.Empty(t, rec.Steps)
	assert.Len(t, gw.Calls(), 2)
	assert.Equal(t, []Stage{Draft, Reflect}, seen)
}

func TestRun_CanceledContext(t *testing.T) {
	gw := stageScript()
	r := New(Config{Gateway: gw, Plan: legalPlan(t), SourceLang: "English", TargetLang: "German"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, Chunk{Text: "Hello"})
	assert.ErrorIs(t, err, failure.ErrExternalCall)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, gw.Calls())
}
