// Package placeholder shields markup in a chunk from the model. Fenced code,
// inline code, HTML tags, URLs and {{template}} variables are swapped for
// numbered markers ([PH0], [PH1], ...) before the Draft stage and swapped
// back in the finalized text.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Hint is appended to translation prompts when a chunk carries markers.
const Hint = "Keep every [PHn] marker exactly as it appears. Do not translate, move, or remove the markers."

// Protection order: longest constructs first.
var patterns = []*regexp.Regexp{
	regexp.MustCompile("(?s)```.*?```"),
	regexp.MustCompile("`[^`\n]+`"),
	regexp.MustCompile(`\{\{[^{}]*\}\}`),
	regexp.MustCompile(`<[A-Za-z/!][^>]*>`),
	regexp.MustCompile(`https?://[^\s<>()\[\]"']+`),
}

var markerRe = regexp.MustCompile(`\[PH(\d+)\]`)

// Protected is a chunk with its markup replaced by markers.
type Protected struct {
	Text    string
	markers []string
}

// Protect replaces markup in text with markers numbered in order of
// replacement.
func Protect(text string) Protected {
	var markers []string
	replace := func(match string) string {
		id := fmt.Sprintf("[PH%d]", len(markers))
		markers = append(markers, match)
		return id
	}
	for _, re := range patterns {
		text = re.ReplaceAllStringFunc(text, replace)
	}
	return Protected{Text: text, markers: markers}
}

// Len is the number of markers.
func (p Protected) Len() int { return len(p.markers) }

// Restore puts the originals back into translated. Markers the model
// invented (out of range) are left as they are.
func (p Protected) Restore(translated string) string {
	if len(p.markers) == 0 {
		return translated
	}
	return markerRe.ReplaceAllStringFunc(translated, func(match string) string {
		idx, err := strconv.Atoi(markerRe.FindStringSubmatch(match)[1])
		if err != nil || idx >= len(p.markers) {
			return match
		}
		return p.markers[idx]
	})
}

// Missing lists the indices of markers absent from translated.
func (p Protected) Missing(translated string) []int {
	var missing []int
	for i := range p.markers {
		if !strings.Contains(translated, fmt.Sprintf("[PH%d]", i)) {
			missing = append(missing, i)
		}
	}
	return missing
}
