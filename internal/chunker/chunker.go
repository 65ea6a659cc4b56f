// Package chunker splits source text into ordered, bounded, overlapping
// chunks while preserving paragraph and sentence integrity where it can.
// All lengths are counted in unicode code points, and a chunk never ends in
// the middle of a grapheme cluster unless one cluster exceeds the limit.
package chunker

import (
	"unicode"

	"github.com/rivo/uniseg"
)

const (
	DefaultMaxChars = 4000
	DefaultOverlap  = 200
)

// Options bound the chunks. MaxChars ≤ 0 means unlimited. An Overlap that
// is not smaller than MaxChars is clamped to MaxChars/4.
type Options struct {
	MaxChars int
	Overlap  int
}

// Chunk is one translation unit. Start and End are rune offsets into the
// text of the structural unit the chunk came from; consecutive chunks of
// the same unit share the runes in [next.Start, prev.End).
type Chunk struct {
	Index int
	Unit  int
	Text  string
	Start int
	End   int
}

func (o Options) normalized() Options {
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	if o.MaxChars > 0 && o.Overlap >= o.MaxChars {
		o.Overlap = o.MaxChars / 4
	}
	return o
}

// Split chunks a single text. Empty text yields no chunks; text no longer
// than MaxChars yields exactly one. Each split is attempted, in order of
// preference, at:
//  1. Paragraph boundaries (\n\n)
//  2. Sentence-ending punctuation (. ! ? followed by whitespace, or 。！？)
//  3. Line breaks (\n)
//  4. Whitespace (word boundary)
//  5. Hard cut at MaxChars, moved back to a grapheme cluster boundary
//
// The boundary always lies beyond the overlap so every chunk advances.
func Split(text string, opts Options) []Chunk {
	return splitUnit(text, 0, 0, opts.normalized())
}

// SplitUnits chunks each structural unit (a slide, a page) independently.
// Chunk indices are global and contiguous; Unit records the source unit.
// Empty units produce no chunks.
func SplitUnits(units []string, opts Options) []Chunk {
	opts = opts.normalized()
	var chunks []Chunk
	for u, text := range units {
		chunks = append(chunks, splitUnit(text, u, len(chunks), opts)...)
	}
	return chunks
}

func splitUnit(text string, unit, firstIndex int, opts Options) []Chunk {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}
	if opts.MaxChars <= 0 || n <= opts.MaxChars {
		return []Chunk{{Index: firstIndex, Unit: unit, Text: text, Start: 0, End: n}}
	}

	breaks := clusterBreaks(runes)
	var chunks []Chunk
	start := 0
	for {
		end := start + opts.MaxChars
		if end >= n {
			chunks = append(chunks, Chunk{Index: firstIndex + len(chunks), Unit: unit, Text: string(runes[start:]), Start: start, End: n})
			return chunks
		}

		cut := start + findSplit(runes[start:], breaks[start:], opts.MaxChars, opts.Overlap)
		chunks = append(chunks, Chunk{Index: firstIndex + len(chunks), Unit: unit, Text: string(runes[start:cut]), Start: start, End: cut})
		start = cut - opts.Overlap
		for start < cut && !breaks[start] {
			start++
		}
	}
}

// clusterBreaks marks the rune offsets at which a grapheme cluster starts,
// plus the end of the text.
func clusterBreaks(runes []rune) []bool {
	breaks := make([]bool, len(runes)+1)
	g := uniseg.NewGraphemes(string(runes))
	pos := 0
	for g.Next() {
		breaks[pos] = true
		pos += len(g.Runes())
	}
	breaks[len(runes)] = true
	return breaks
}

func isFullStop(r rune) bool {
	switch r {
	case '.', '!', '?':
		return true
	}
	return false
}

func isIdeographicStop(r rune) bool {
	switch r {
	case '。', '！', '？':
		return true
	}
	return false
}

// findSplit returns how many runes of rest (at most size) to consume,
// searching backwards for the best boundary. rest is longer than size and
// breaks[i] reports whether a grapheme cluster starts at rest[i]. The result
// is always greater than minKeep, so a following chunk that re-reads
// minKeep runes still advances.
func findSplit(rest []rune, breaks []bool, size, minKeep int) int {
	usable := func(end int) bool { return end > minKeep && breaks[end] }

	// 1. Paragraph boundary, consuming the blank line.
	for i := size - 2; i >= 0 && i+2 > minKeep; i-- {
		if rest[i] == '\n' && rest[i+1] == '\n' && usable(i+2) {
			return i + 2
		}
	}

	// 2. Sentence end. Latin punctuation needs trailing whitespace and
	// consumes it; ideographic punctuation ends the sentence on its own.
	for i := size - 1; i >= 0 && i+1 > minKeep; i-- {
		r := rest[i]
		switch {
		case isFullStop(r) && i+1 < size && unicode.IsSpace(rest[i+1]) && usable(i+2):
			return i + 2
		case isIdeographicStop(r):
			end := i + 1
			if end < size && unicode.IsSpace(rest[end]) {
				end++
			}
			if usable(end) {
				return end
			}
		}
	}

	// 3. Line break.
	for i := size - 1; i >= 0 && i+1 > minKeep; i-- {
		if rest[i] == '\n' && usable(i+1) {
			return i + 1
		}
	}

	// 4. Whitespace word boundary.
	for i := size - 1; i >= 0 && i+1 > minKeep; i-- {
		if unicode.IsSpace(rest[i]) && usable(i+1) {
			return i + 1
		}
	}

	// 5. Hard cut at the last grapheme cluster boundary. A single cluster
	// wider than the window is cut at size.
	for cut := size; cut > minKeep; cut-- {
		if breaks[cut] {
			return cut
		}
	}
	return size
}

// Merge reassembles the text of chunks produced by Split or SplitUnits,
// dropping the runes each chunk repeats from its predecessor. Units are
// joined without a separator.
func Merge(chunks []Chunk) string {
	var out []rune
	prevUnit, prevEnd := -1, 0
	for _, c := range chunks {
		runes := []rune(c.Text)
		if c.Unit == prevUnit && prevEnd > c.Start {
			skip := prevEnd - c.Start
			if skip > len(runes) {
				skip = len(runes)
			}
			runes = runes[skip:]
		}
		out = append(out, runes...)
		prevUnit, prevEnd = c.Unit, c.End
	}
	return string(out)
}

// Texts returns the chunk texts in order.
func Texts(chunks []Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
