package chunker_test

import (
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/valpere/agentran/internal/chunker"
)

const lorem = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua! " +
	"Ut enim ad minim veniam, quis nostrud exercitation ullamco laboris nisi ut aliquip ex ea commodo consequat.\n\n" +
	"Duis aute irure dolor in reprehenderit in voluptate velit esse cillum dolore eu fugiat nulla pariatur? " +
	"Excepteur sint occaecat cupidatat non proident, sunt in culpa qui officia deserunt mollit anim id est laborum."

func TestSplit_ShortText(t *testing.T) {
	text := "Hello, world!"
	chunks := chunker.Split(text, chunker.Options{MaxChars: 100, Overlap: 10})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	want := chunker.Chunk{Index: 0, Unit: 0, Text: text, Start: 0, End: 13}
	if diff := cmp.Diff(want, chunks[0]); diff != "" {
		t.Errorf("chunk mismatch (-want +got):\n%s", diff)
	}
}

func TestSplit_Empty(t *testing.T) {
	if chunks := chunker.Split("", chunker.Options{MaxChars: 10}); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

func TestSplit_Unlimited(t *testing.T) {
	text := strings.Repeat("word ", 500)
	chunks := chunker.Split(text, chunker.Options{MaxChars: 0})
	if len(chunks) != 1 {
		t.Errorf("expected 1 chunk when MaxChars=0, got %d", len(chunks))
	}
}

func TestSplit_ParagraphBoundary(t *testing.T) {
	para1 := "First paragraph text here."
	para2 := "Second paragraph text here."
	text := para1 + "\n\n" + para2

	chunks := chunker.Split(text, chunker.Options{MaxChars: 40})
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunker.Texts(chunks))
	}
	if chunks[0].Text != para1+"\n\n" {
		t.Errorf("first chunk = %q, want the first paragraph with its blank line", chunks[0].Text)
	}
	if chunks[1].Text != para2 {
		t.Errorf("second chunk = %q, want %q", chunks[1].Text, para2)
	}
}

func TestSplit_SentenceBoundary(t *testing.T) {
	text := "First sentence ends here. Second sentence follows. Third sentence."
	chunks := chunker.Split(text, chunker.Options{MaxChars: 30})
	if len(chunks) < 2 {
		t.Fatalf("expected ≥2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "First sentence ends here. " {
		t.Errorf("first chunk = %q, want split after the first sentence", chunks[0].Text)
	}
}

func TestSplit_WordBoundary(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta"
	chunks := chunker.Split(text, chunker.Options{MaxChars: 12})
	for _, c := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(c.Text, " ") {
			t.Errorf("chunk %d = %q should end at a word boundary", c.Index, c.Text)
		}
	}
}

func TestSplit_BoundsOverlapAndReconstruction(t *testing.T) {
	opts := chunker.Options{MaxChars: 60, Overlap: 15}
	chunks := chunker.Split(lorem, opts)
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if n := utf8.RuneCountInString(c.Text); n > opts.MaxChars {
			t.Errorf("chunk %d has %d runes, max %d", i, n, opts.MaxChars)
		}
		if i == 0 {
			continue
		}
		prev := []rune(chunks[i-1].Text)
		if c.Start != chunks[i-1].End-opts.Overlap {
			t.Errorf("chunk %d starts at %d, want %d", i, c.Start, chunks[i-1].End-opts.Overlap)
		}
		shared := string(prev[len(prev)-opts.Overlap:])
		if !strings.HasPrefix(c.Text, shared) {
			t.Errorf("chunk %d = %q does not begin with overlap %q", i, c.Text, shared)
		}
	}

	if got := chunker.Merge(chunks); got != lorem {
		t.Errorf("Merge did not reconstruct the text:\n got %q\nwant %q", got, lorem)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	opts := chunker.Options{MaxChars: 45, Overlap: 8}
	first := chunker.Split(lorem, opts)
	second := chunker.Split(lorem, opts)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("chunking is not deterministic (-first +second):\n%s", diff)
	}
}

func TestSplit_Unicode(t *testing.T) {
	text := strings.Repeat("Привіт світ ", 20) + strings.Repeat("ї", 50)
	chunks := chunker.Split(text, chunker.Options{MaxChars: 17, Overlap: 3})
	for _, c := range chunks {
		if !utf8.ValidString(c.Text) {
			t.Errorf("chunk %d is not valid UTF-8: %q", c.Index, c.Text)
		}
		if utf8.RuneCountInString(c.Text) > 17 {
			t.Errorf("chunk %d too long: %q", c.Index, c.Text)
		}
	}
	if got := chunker.Merge(chunks); got != text {
		t.Errorf("Merge mismatch for unicode text")
	}
}

func TestSplit_HardCutAvoidsCombiningMarks(t *testing.T) {
	text := strings.Repeat("e\u0301", 30)
	chunks := chunker.Split(text, chunker.Options{MaxChars: 7})
	for _, c := range chunks {
		first, _ := utf8.DecodeRuneInString(c.Text)
		if unicode.Is(unicode.Mn, first) {
			t.Errorf("chunk %d begins with a combining mark", c.Index)
		}
	}
	if got := chunker.Merge(chunks); got != text {
		t.Errorf("Merge mismatch for combining text")
	}
}

func TestSplit_HardCutKeepsGraphemeClusters(t *testing.T) {
	tests := []struct {
		name    string
		cluster string
		count   int
		opts    chunker.Options
	}{
		{"devanagari spacing mark", "का", 6, chunker.Options{MaxChars: 5}},
		{"devanagari with overlap", "का", 10, chunker.Options{MaxChars: 7, Overlap: 1}},
		{"regional indicator flags", "🇺🇦", 6, chunker.Options{MaxChars: 5}},
		{"zwj sequence", "👩\u200d👩\u200d👧", 4, chunker.Options{MaxChars: 7}},
		{"enclosing mark", "1\u20e3", 8, chunker.Options{MaxChars: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat(tt.cluster, tt.count)
			width := utf8.RuneCountInString(tt.cluster)
			chunks := chunker.Split(text, tt.opts)
			if len(chunks) < 2 {
				t.Fatalf("expected several chunks, got %d", len(chunks))
			}
			for _, c := range chunks {
				if !strings.HasPrefix(c.Text, tt.cluster) || !strings.HasSuffix(c.Text, tt.cluster) {
					t.Errorf("chunk %d = %q splits a grapheme cluster", c.Index, c.Text)
				}
				if n := utf8.RuneCountInString(c.Text); n%width != 0 || n > tt.opts.MaxChars {
					t.Errorf("chunk %d has %d runes", c.Index, n)
				}
			}
			if got := chunker.Merge(chunks); got != text {
				t.Errorf("Merge mismatch: got %q", got)
			}
		})
	}
}

func TestSplit_IdeographicSentenceBoundary(t *testing.T) {
	text := "第一句话。第二句话。第三句话。"
	chunks := chunker.Split(text, chunker.Options{MaxChars: 8})
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %q", len(chunks), chunker.Texts(chunks))
	}
	for _, c := range chunks {
		if !strings.HasSuffix(c.Text, "。") {
			t.Errorf("chunk %d = %q should end at a sentence", c.Index, c.Text)
		}
	}
}

func TestSplit_PrefersLineBreakOverSpace(t *testing.T) {
	text := "line one here\nline two here"
	chunks := chunker.Split(text, chunker.Options{MaxChars: 20})
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunker.Texts(chunks))
	}
	if chunks[0].Text != "line one here\n" {
		t.Errorf("first chunk = %q, want it to end at the line break", chunks[0].Text)
	}
	if chunker.Merge(chunks) != text {
		t.Error("Merge mismatch")
	}
}

func TestSplit_OverlapClamped(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10)
	chunks := chunker.Split(text, chunker.Options{MaxChars: 20, Overlap: 25})
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	if got := chunks[0].End - chunks[1].Start; got != 5 {
		t.Errorf("overlap = %d, want clamp to MaxChars/4 = 5", got)
	}
	if chunker.Merge(chunks) != text {
		t.Error("Merge mismatch after clamp")
	}
}

func TestSplitUnits(t *testing.T) {
	units := []string{"Slide one title", "", strings.Repeat("slide three body ", 4)}
	chunks := chunker.SplitUnits(units, chunker.Options{MaxChars: 30, Overlap: 5})

	if len(chunks) < 3 {
		t.Fatalf("expected ≥3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d, indices must be contiguous", i, c.Index)
		}
	}
	if chunks[0].Unit != 0 || chunks[0].Text != "Slide one title" {
		t.Errorf("first chunk = %+v", chunks[0])
	}
	for _, c := range chunks[1:] {
		if c.Unit != 2 {
			t.Errorf("chunk %d unit = %d, want 2", c.Index, c.Unit)
		}
	}
	if got := chunker.Merge(chunks); got != units[0]+units[2] {
		t.Errorf("Merge across units = %q", got)
	}
}
