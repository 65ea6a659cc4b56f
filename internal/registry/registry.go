// Package registry is the static catalogue of specialist translation
// profiles. A profile is data only: a system role, a prompt focus with its
// guidelines, and a default temperature. Master is the one profile that
// takes its guidelines and requirements at call time.
package registry

import (
	"fmt"
	"strings"

	"github.com/valpere/agentran/internal/failure"
)

const (
	MasterName  = "Master Translator"
	GeneralName = "General Translator"
)

type Profile struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	SystemRole  string   `json:"system_role"`
	Focus       string   `json:"focus,omitempty"`
	Guidelines  []string `json:"guidelines,omitempty"`
	Temperature float64  `json:"temperature"`
	Dynamic     bool     `json:"dynamic"`
}

// catalogue is the registry order. Resolve scans it in this order.
var catalogue = []Profile{
	{
		Key:  "legal",
		Name: "Legal Translator",
		SystemRole: "You are a Legal Translation Specialist with expertise in translating legal documents.\n" +
			"Your role is to ensure precise and accurate translation of legal terminology while maintaining the formal and professional tone required in legal documents.",
		Focus: "legal accuracy",
		Guidelines: []string{
			"Maintain precise legal terminology",
			"Ensure consistent use of legal terms",
			"Preserve the exact meaning of legal concepts",
			"Follow legal translation conventions",
			"Maintain formal and professional tone",
			"Use appropriate legal terminology",
			"Ensure compliance with legal requirements",
			"Avoid ambiguity in legal terms",
		},
		Temperature: 0.65,
	},
	{
		Key:  "literary",
		Name: "Literary Translator",
		SystemRole: "You are a Literary Translation Specialist with expertise in translating creative works.\n" +
			"Your role is to preserve the artistic and emotional qualities of the original text while ensuring natural flow in the target language.",
		Focus: "literary quality",
		Guidelines: []string{
			"Preserve the original's tone, style, and voice",
			"Maintain metaphors, idioms, and cultural references",
			"Ensure the translation flows naturally in the target language",
			"Adapt cultural references appropriately",
			"Preserve the author's unique writing style",
			"Use rich, varied vocabulary",
			"Maintain the original's rhythm and flow",
			"Preserve literary devices (alliteration, assonance, etc.)",
		},
		Temperature: 0.8,
	},
	{
		Key:  "business",
		Name: "Business Translator",
		SystemRole: "You are a Business Translation Specialist with expertise in translating business content.\n" +
			"Your role is to maintain professional tone and business accuracy while ensuring cultural appropriateness.",
		Focus: "business communication",
		Guidelines: []string{
			"Maintain professional tone",
			"Preserve business terminology",
			"Ensure cultural appropriateness",
			"Follow business writing conventions",
			"Use appropriate business terminology",
			"Maintain formal communication style",
			"Preserve business metrics and units",
			"Ensure clarity in business context",
		},
		Temperature: 0.7,
	},
	{
		Key:  "technical",
		Name: "Technical Translator",
		SystemRole: "You are a Technical Translation Specialist with expertise in translating technical documentation.\n" +
			"Your role is to maintain technical accuracy while ensuring clarity and usability in the target language.",
		Focus: "technical accuracy",
		Guidelines: []string{
			"Maintain technical precision",
			"Use consistent terminology",
			"Preserve technical specifications",
			"Follow technical writing conventions",
			"Ensure clarity of instructions",
			"Maintain formatting and structure",
			"Use appropriate technical terminology",
			"Preserve measurement units and standards",
		},
		Temperature: 0.65,
	},
	{
		Key:  "medical",
		Name: "Medical Translator",
		SystemRole: "You are a Medical Translation Specialist with expertise in translating medical content.\n" +
			"Your role is to maintain medical accuracy while ensuring clarity and sensitivity in the target language.",
		Focus: "medical accuracy",
		Guidelines: []string{
			"Maintain medical terminology accuracy",
			"Preserve clinical precision",
			"Ensure patient safety",
			"Follow medical writing conventions",
			"Use appropriate medical terminology",
			"Maintain sensitivity to patient information",
			"Preserve medical measurements and units",
			"Ensure compliance with medical standards",
		},
		Temperature: 0.6,
	},
	{
		Key:  "news",
		Name: "News Translator",
		SystemRole: "You are a News Translation Specialist with expertise in translating news articles and journalistic content.\n" +
			"Your role is to maintain journalistic style, accuracy, and immediacy while adapting content for different cultural contexts.",
		Focus: "news/journalistic style",
		Guidelines: []string{
			"Maintain journalistic style and tone",
			"Preserve news value and immediacy",
			"Adapt cultural references appropriately",
			"Use clear, concise language",
			"Maintain factual accuracy",
			"Follow news writing conventions",
			"Use appropriate news terminology",
			"Ensure cultural sensitivity",
		},
		Temperature: 0.7,
	},
	{
		Key:  "academic",
		Name: "Academic Translator",
		SystemRole: "You are an Academic Translation Specialist with expertise in translating scholarly works.\n" +
			"Your role is to maintain academic rigor, precision, and formal tone while ensuring accessibility in the target language.",
		Focus: "academic style",
		Guidelines: []string{
			"Maintain academic tone and formality",
			"Preserve technical terminology",
			"Ensure precise meaning of concepts",
			"Follow academic writing conventions",
			"Maintain citation formats",
			"Use appropriate academic terminology",
			"Preserve theoretical frameworks",
			"Ensure consistency in terminology",
		},
		Temperature: 0.7,
	},
	{
		Key:  "marketing",
		Name: "Marketing Translator",
		SystemRole: "You are a Marketing Translation Specialist with expertise in translating marketing content.\n" +
			"Your role is to maintain brand voice and marketing impact while adapting content for different cultural markets.",
		Focus: "marketing effectiveness",
		Guidelines: []string{
			"Maintain brand voice and tone",
			"Preserve marketing impact",
			"Adapt cultural references appropriately",
			"Follow marketing writing conventions",
			"Use persuasive language",
			"Maintain emotional appeal",
			"Preserve call-to-action effectiveness",
			"Ensure cultural appropriateness",
		},
		Temperature: 0.8,
	},
	{
		Key:         "general",
		Name:        GeneralName,
		SystemRole:  "You are an expert and experienced translator who knows many languages.",
		Temperature: 0.8,
	},
	{
		Key:  "master",
		Name: MasterName,
		SystemRole: "You are a Master Translator with expertise in multiple translation styles and domains.\n" +
			"You can adapt your translation approach based on the specific requirements and style guidelines provided.",
		Temperature: 0.7,
		Dynamic:     true,
	},
}

// Registry is an immutable, ordered set of profiles.
type Registry struct {
	profiles []Profile
}

// New returns the catalogue with per-profile temperature overrides applied.
// Override keys are profile keys ("legal", "master"); an unknown key or a
// temperature outside [0, 2] is a configuration failure.
func New(overrides map[string]float64) (*Registry, error) {
	profiles := make([]Profile, len(catalogue))
	for i, p := range catalogue {
		p.Guidelines = append([]string(nil), p.Guidelines...)
		profiles[i] = p
	}

	for key, t := range overrides {
		idx := indexOfKey(profiles, strings.ToLower(key))
		if idx < 0 {
			return nil, failure.Newf(failure.Configuration, "apply temperature overrides", "unknown profile %q", key)
		}
		if t < 0 || t > 2 {
			return nil, failure.Newf(failure.Configuration, "apply temperature overrides", "temperature for %q must be in [0, 2], got %g", key, t)
		}
		profiles[idx].Temperature = t
	}
	return &Registry{profiles: profiles}, nil
}

func indexOfKey(profiles []Profile, key string) int {
	for i, p := range profiles {
		if p.Key == key {
			return i
		}
	}
	return -1
}

// Profiles returns the profiles in registry order.
func (r *Registry) Profiles() []Profile {
	return append([]Profile(nil), r.profiles...)
}

// Names returns the profile names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		names[i] = p.Name
	}
	return names
}

// Keys returns the short profile labels offered to the style manager.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		keys[i] = p.Name
		if !p.Dynamic {
			keys[i] = strings.TrimSuffix(p.Name, " Translator")
		}
	}
	return keys
}

// Lookup finds a profile by exact name or by key, ignoring case for keys.
func (r *Registry) Lookup(name string) (Profile, bool) {
	name = strings.TrimSpace(name)
	for _, p := range r.profiles {
		if p.Name == name || p.Key == strings.ToLower(name) {
			return p, true
		}
	}
	return Profile{}, false
}

// Get returns the named profile. Asking for a profile that is not in the
// registry is an internal consistency failure: every name the engine uses
// has already passed through Resolve.
func (r *Registry) Get(name string) (Profile, error) {
	p, ok := r.Lookup(name)
	if !ok {
		return Profile{}, failure.Newf(failure.Internal, "lookup profile", "profile %q is not registered", name)
	}
	return p, nil
}

// Master returns the dynamic profile.
func (r *Registry) Master() Profile {
	p, _ := r.Lookup(MasterName)
	return p
}

// Resolve maps a free-form profile name onto a registered profile. It is
// total: exact matches win, then the first profile in registry order whose
// key is contained in the name or whose key contains the name (ignoring
// case and a trailing "translator"; names shorter than three letters only
// match the first way), and Master otherwise. exact reports
// whether the name matched without remapping.
func (r *Registry) Resolve(name string) (p Profile, exact bool) {
	if p, ok := r.Lookup(name); ok {
		return p, true
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	needle = strings.TrimSpace(strings.TrimSuffix(needle, "translator"))
	if needle == "" {
		return r.Master(), false
	}

	for _, p := range r.profiles {
		if strings.Contains(needle, p.Key) || (len(needle) >= minReverseMatch && strings.Contains(p.Key, needle)) {
			return p, false
		}
	}
	return r.Master(), false
}

// minReverseMatch keeps fragments like "ma" from matching a key.
const minReverseMatch = 3

// Describe renders a one-line summary of p for listings.
func (p Profile) Describe() string {
	if p.Dynamic {
		return fmt.Sprintf("%s (temperature %.2f, guidelines supplied per session)", p.Name, p.Temperature)
	}
	if p.Focus == "" {
		return fmt.Sprintf("%s (temperature %.2f)", p.Name, p.Temperature)
	}
	return fmt.Sprintf("%s (temperature %.2f, focus: %s)", p.Name, p.Temperature, p.Focus)
}
