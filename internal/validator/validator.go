// Package validator checks that a translation result is in the expected target language.
package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/valpere/agentran/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language detection.
// Shorter texts produce unreliable results and are accepted without validation.
const minValidationLength = 20

// Validator checks that a translation result is written in the expected target language.
type Validator struct {
	id detector.Identifier
}

// New creates a Validator over id. A nil id uses the lingua detector.
func New(id detector.Identifier) *Validator {
	if id == nil {
		id = detector.New()
	}
	return &Validator{id: id}
}

// IsValid returns true when translatedText appears to be written in
// targetLang (an ISO 639-1 code).
//
// Short texts (fewer than minValidationLength runes) and texts whose language
// cannot be determined pass without error. When the detected language differs
// from targetLang the returned error names both codes.
func (v *Validator) IsValid(ctx context.Context, translatedText, targetLang string) (bool, error) {
	if targetLang == "" {
		return true, nil
	}

	text := strings.TrimSpace(translatedText)
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}

	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, err := v.id.Identify(ctx, text)
	if err != nil {
		return false, fmt.Errorf("failed to detect language: %w", err)
	}
	if detected == "" {
		// Ambiguous language, cannot validate.
		return true, nil
	}

	if !strings.EqualFold(detected, targetLang) {
		return false, fmt.Errorf("expected %s but detected %s", targetLang, detected)
	}

	return true, nil
}
