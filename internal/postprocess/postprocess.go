// Package postprocess removes model artifacts from stage outputs.
//
// Draft, Revise and TerminologyCheck outputs pass through Clean before they
// are recorded; Reflect output is critique and is kept verbatim.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean strips, in order: reasoning blocks, a wrapping code fence, echoed
// prompt labels, and outer quotes. The result is trimmed.
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeCodeFence(text)
	text = removeInstructionEchoes(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// CleanOr returns Clean(text), or the trimmed raw text when cleaning leaves
// nothing. A stage never records an empty result for a non-empty reply.
func CleanOr(text string) string {
	if cleaned := Clean(text); cleaned != "" {
		return cleaned
	}
	return strings.TrimSpace(text)
}

// Go's RE2 has no backreferences, so each tag pair is listed.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// An opened tag with no closing tag: the model was cut off mid-thought.
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

var codeFenceRe = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*\\s*\n(.*?)\n?```$")

func removeCodeFence(text string) string {
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// echoPatterns are anchored at the start and require a colon. They also
// catch the labels our own prompts end with ("Translation:",
// "Improved translation:") when a model repeats them.
var echoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:(?:certainly|sure|of course)[,.!]?\s+)?here(?:'s| is)(?: the| my)? (?:refined |polished |translated |improved |corrected |final |revised )?(?:translation|text|version)(?: in [\p{L} ]+)?\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:refined |polished |improved |corrected |final |revised |initial )?(?:translation|translated text)\s*:`),
	regexp.MustCompile(`(?i)^\*\*(?:improved |corrected |final |revised )?translation:?\*\*\s*:?`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			rest := strings.TrimSpace(text[loc[1]:])
			if rest == "" {
				continue
			}
			text = rest
		}
	}
	return text
}

// removeQuoteWrapping strips one matching pair of outer quotes:
//
//	"…"  '…'  «…»  “…”  ‘…’
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
