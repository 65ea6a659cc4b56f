// Package terminology holds the session glossary: an immutable map of
// source terms to the target terms the translation must use.
package terminology

import (
	"fmt"
	"sort"
	"strings"
)

type Term struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Map is an immutable source→target glossary. The zero value is an empty
// map. Nothing mutates a Map after construction, so one value can be shared
// by every chunk of a session.
type Map struct {
	terms map[string]string
}

// New copies entries into a Map. Keys and values are trimmed; entries with
// an empty source or target are dropped.
func New(entries map[string]string) Map {
	terms := make(map[string]string, len(entries))
	for src, tgt := range entries {
		src, tgt = strings.TrimSpace(src), strings.TrimSpace(tgt)
		if src == "" || tgt == "" {
			continue
		}
		terms[src] = tgt
	}
	return Map{terms: terms}
}

// FromTerms builds a Map from a term list. Later duplicates win.
func FromTerms(list []Term) Map {
	entries := make(map[string]string, len(list))
	for _, t := range list {
		entries[t.Source] = t.Target
	}
	return New(entries)
}

func (m Map) Len() int      { return len(m.terms) }
func (m Map) IsEmpty() bool { return len(m.terms) == 0 }

func (m Map) Lookup(source string) (string, bool) {
	tgt, ok := m.terms[source]
	return tgt, ok
}

// Terms returns the entries sorted by source term.
func (m Map) Terms() []Term {
	list := make([]Term, 0, len(m.terms))
	for src, tgt := range m.terms {
		list = append(list, Term{Source: src, Target: tgt})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Source < list[j].Source })
	return list
}

// Entries returns a copy of the underlying mapping.
func (m Map) Entries() map[string]string {
	out := make(map[string]string, len(m.terms))
	for k, v := range m.terms {
		out[k] = v
	}
	return out
}

// Merge returns a new Map holding both glossaries. Entries of other take
// precedence over entries of m.
func (m Map) Merge(other Map) Map {
	entries := m.Entries()
	for k, v := range other.terms {
		entries[k] = v
	}
	return Map{terms: entries}
}

// Present lists the glossary terms whose source or target form occurs in
// text, sorted by source term.
func (m Map) Present(text string) []Term {
	var found []Term
	for _, t := range m.Terms() {
		if strings.Contains(text, t.Source) || strings.Contains(text, t.Target) {
			found = append(found, t)
		}
	}
	return found
}

// List renders the glossary one "source: target" pair per line.
func (m Map) List() string {
	terms := m.Terms()
	lines := make([]string, len(terms))
	for i, t := range terms {
		lines[i] = fmt.Sprintf("%s: %s", t.Source, t.Target)
	}
	return strings.Join(lines, "\n")
}

// CheckPrompt builds the terminology-check instruction for a finished
// translation. The model applies the glossary; nothing here substitutes
// terms itself.
func (m Map) CheckPrompt(translation, sourceLang, targetLang string) string {
	var sb strings.Builder
	sb.WriteString("Review the following translation and ensure all terms are translated according to the provided terminology list.\n")
	sb.WriteString("If any terms in the translation don't match the terminology list, correct them while maintaining the overall meaning and flow. Do not add any additional text or comments.\n\n")
	sb.WriteString(fmt.Sprintf("Terminology List (%s -> %s):\n", sourceLang, targetLang))
	sb.WriteString(m.List())
	sb.WriteString("\n\nTranslation to check:\n")
	sb.WriteString(translation)
	sb.WriteString("\n\nPlease provide the corrected translation with proper terminology usage:")
	return sb.String()
}
