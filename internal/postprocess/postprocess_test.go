package postprocess

import "testing"

func TestRemoveThinkingBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"no blocks", "Привіт, світе.", "Привіт, світе."},
		{"think block", "<think>The user wants Ukrainian</think>Привіт", "Привіт"},
		{"reflection block", "Begin<reflection>Checking context</reflection>Finish", "BeginFinish"},
		{"multiline reasoning", "<reasoning>\nline one\nline two\n</reasoning>\nResult", "Result"},
		{"multiple blocks", "<thinking>First</thinking>middle<thinking>Second</thinking>", "middle"},
		{"truncated block", "Before<thinking>Incomplete", "Before"},
		{"case insensitive", "<THINK>x</THINK>Done", "Done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := removeThinkingBlocks(tt.input); got != tt.expected {
				t.Errorf("removeThinkingBlocks(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRemoveCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "Hallo Welt", "Hallo Welt"},
		{"bare fence", "```\nHallo Welt\n```", "Hallo Welt"},
		{"language fence", "```text\nHallo\nWelt\n```", "Hallo\nWelt"},
		{"fence in the middle", "Hallo\n```\ncode\n```", "Hallo\n```\ncode\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := removeCodeFence(tt.input); got != tt.expected {
				t.Errorf("removeCodeFence(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRemoveInstructionEchoes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"no echo", "Just a normal translation.", "Just a normal translation."},
		{"here's the translation", "Here's the translation: Actual text", "Actual text"},
		{"here is the improved translation", "Here is the improved translation:\nDone", "Done"},
		{"here is my translation in German", "Here is my translation in German: Hallo", "Hallo"},
		{"sure prefix", "Sure, here's the polished translation: Done", "Done"},
		{"prompt label", "Translation: Bonjour", "Bonjour"},
		{"improved label", "Improved translation:\nBonjour", "Bonjour"},
		{"corrected label", "Corrected translation: Bonjour", "Bonjour"},
		{"bold label", "**Final Translation:** Bonjour", "Bonjour"},
		{"sure as content", "Sure, I will come tomorrow.", "Sure, I will come tomorrow."},
		{"echo not at start", "Before Here's the translation: After", "Before Here's the translation: After"},
		{"echo without colon", "Here's the translation text", "Here's the translation text"},
		{"label alone", "Translation:", "Translation:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := removeInstructionEchoes(tt.input); got != tt.expected {
				t.Errorf("removeInstructionEchoes(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRemoveQuoteWrapping(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"single char", "a", "a"},
		{"double quotes", "\"Hello world\"", "Hello world"},
		{"guillemets", "«Привіт»", "Привіт"},
		{"curly double quotes", "“Hello world”", "Hello world"},
		{"curly single quotes", "‘Hello world’", "Hello world"},
		{"unmatched quotes", "\"Hello world'", "\"Hello world'"},
		{"only opening quote", "\"Hello world", "\"Hello world"},
		{"inner whitespace", "\"  Hello  \"", "Hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := removeQuoteWrapping(tt.input); got != tt.expected {
				t.Errorf("removeQuoteWrapping(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"clean text", "Just a normal translation.", "Just a normal translation."},
		{"all phases", "<thinking>hmm</thinking>```\nHere's the translation:\n\"Translated text\"\n```", "Translated text"},
		{"truncated thinking", "Text<thinking>Incomplete", "Text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanOr(t *testing.T) {
	if got := CleanOr("  <think>only thoughts</think>  "); got != "<think>only thoughts</think>" {
		t.Errorf("CleanOr kept %q, want raw trimmed text", got)
	}
	if got := CleanOr("Translation: Hallo"); got != "Hallo" {
		t.Errorf("CleanOr(%q) = %q", "Translation: Hallo", got)
	}
}
