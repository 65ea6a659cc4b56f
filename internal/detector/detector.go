// Package detector identifies the language of a text, locally with lingua
// or remotely with the Cloud Translation API.
package detector

import (
	"context"
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// Identifier returns the lower-case ISO 639-1 code of the language text is
// written in, or "" when it cannot tell.
type Identifier interface {
	Identify(ctx context.Context, text string) (string, error)
}

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a lingua detector over all languages. Building it is
// expensive; reuse the instance.
func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Identify(_ context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", nil
	}
	return strings.ToLower(lang.IsoCode639_1().String()), nil
}
