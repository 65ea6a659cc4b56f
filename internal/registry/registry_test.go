package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/agentran/internal/config"
	"github.com/valpere/agentran/internal/failure"
	"github.com/valpere/agentran/internal/gateway"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(nil)
	require.NoError(t, err)
	return r
}

func TestNew_DefaultTemperatures(t *testing.T) {
	r := newRegistry(t)
	want := map[string]float64{
		"Literary Translator":  0.8,
		"Legal Translator":     0.65,
		"Master Translator":    0.7,
		"News Translator":      0.7,
		"Academic Translator":  0.7,
		"Technical Translator": 0.65,
		"Medical Translator":   0.6,
		"Marketing Translator": 0.8,
		"Business Translator":  0.7,
		"General Translator":   0.8,
	}
	for name, temp := range want {
		p, ok := r.Lookup(name)
		require.True(t, ok, name)
		assert.InDelta(t, temp, p.Temperature, 1e-9, name)
	}
}

func TestNew_OnlyMasterIsDynamic(t *testing.T) {
	for _, p := range newRegistry(t).Profiles() {
		assert.Equal(t, p.Name == MasterName, p.Dynamic, p.Name)
	}
}

func TestNew_Overrides(t *testing.T) {
	r, err := New(map[string]float64{"Legal": 0.2})
	require.NoError(t, err)
	p, _ := r.Lookup("Legal Translator")
	assert.InDelta(t, 0.2, p.Temperature, 1e-9)

	// catalogue untouched
	fresh := newRegistry(t)
	p, _ = fresh.Lookup("Legal Translator")
	assert.InDelta(t, 0.65, p.Temperature, 1e-9)
}

func TestNew_BadOverrides(t *testing.T) {
	_, err := New(map[string]float64{"poetry": 0.5})
	assert.ErrorIs(t, err, failure.ErrConfiguration)

	_, err = New(map[string]float64{"legal": 3})
	assert.ErrorIs(t, err, failure.ErrConfiguration)
}

func TestProfileKeysMatchConfig(t *testing.T) {
	r := newRegistry(t)
	var keys []string
	for _, p := range r.Profiles() {
		keys = append(keys, p.Key)
	}
	assert.ElementsMatch(t, config.ProfileKeys, keys)
}

func TestResolve(t *testing.T) {
	r := newRegistry(t)

	tests := []struct {
		in        string
		want      string
		wantExact bool
	}{
		{"Legal Translator", "Legal Translator", true},
		{"legal", "Legal Translator", true},
		{"LEGAL TRANSLATOR", "Legal Translator", false},
		{"Senior Legal Reviewer", "Legal Translator", false},
		{"lit", "Literary Translator", false},
		{"Marketing and Business", "Business Translator", false},
		{"Medical-Legal", "Legal Translator", false},
		{"Poetry Specialist", MasterName, false},
		{"", MasterName, false},
		{"translator", MasterName, false},
		{"ma", MasterName, false},
		{"Master Translator", MasterName, true},
		{"General Translator", GeneralName, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, exact := r.Resolve(tt.in)
			assert.Equal(t, tt.want, p.Name)
			assert.Equal(t, tt.wantExact, exact)
		})
	}
}

func TestGet_UnknownIsInternalFailure(t *testing.T) {
	_, err := newRegistry(t).Get("Poetry Translator")
	assert.ErrorIs(t, err, failure.ErrInternal)
}

func TestKeys(t *testing.T) {
	keys := newRegistry(t).Keys()
	assert.Equal(t, "Legal", keys[0])
	assert.Contains(t, keys, "Master Translator")
	assert.Contains(t, keys, "General")
}

func TestPrompt_StaticProfile(t *testing.T) {
	p, _ := newRegistry(t).Lookup("Legal Translator")
	prompt := p.Prompt(Input{Text: "The party of the first part", SourceLang: "English", TargetLang: "German"})

	assert.Contains(t, prompt, "from English to German with a focus on legal accuracy")
	assert.Contains(t, prompt, "Text to translate:\nThe party of the first part")
	assert.Contains(t, prompt, "1. Maintain precise legal terminology")
	assert.Contains(t, prompt, "8. Avoid ambiguity in legal terms")
	assert.Regexp(t, `Translation:$`, prompt)
}

func TestPrompt_MasterUsesDynamicLists(t *testing.T) {
	r := newRegistry(t)
	prompt := r.Master().Prompt(Input{
		Text:         "Hello",
		SourceLang:   "English",
		TargetLang:   "French",
		Guidelines:   []string{"Keep it formal"},
		Requirements: []string{"No anglicisms"},
		Notes:        []string{"Preserve all [PHn] markers."},
	})

	assert.Contains(t, prompt, "Style Guidelines:\n- Keep it formal")
	assert.Contains(t, prompt, "Quality Requirements:\n- No anglicisms")
	assert.Contains(t, prompt, "Preserve all [PHn] markers.")
}

func TestPrompt_General(t *testing.T) {
	p, _ := newRegistry(t).Lookup(GeneralName)
	prompt := p.Prompt(Input{Text: "Hi", SourceLang: "English", TargetLang: "Polish"})
	assert.Contains(t, prompt, "Translate the following text from English to Polish.\n")
	assert.NotContains(t, prompt, "Guidelines")
}

func TestTranslate_UsesProfileRoleAndTemperature(t *testing.T) {
	gw := gateway.Fixed("Hallo", 12)
	p, _ := newRegistry(t).Lookup("Medical Translator")

	reply, err := Translate(context.Background(), gw, p, Input{Text: "Hello", SourceLang: "English", TargetLang: "German"})
	require.NoError(t, err)
	assert.Equal(t, "Hallo", reply.Text)
	assert.Equal(t, 12, reply.Tokens)

	calls := gw.Calls()
	require.Len(t, calls, 1)
	assert.InDelta(t, 0.6, calls[0].Options.Temperature, 1e-9)
	assert.Equal(t, gateway.RoleSystem, calls[0].Messages[0].Role)
	assert.Equal(t, p.SystemRole, calls[0].Messages[0].Content)
}
