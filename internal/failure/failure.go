// Package failure classifies the errors that cross package boundaries in a
// translation session so callers can tell a recoverable manager parse
// problem from a fatal provider failure without string matching.
package failure

import (
	"errors"
	"fmt"
)

// Kind identifies the class of a failure.
type Kind int

const (
	// Internal is a consistency failure inside the engine itself.
	Internal Kind = iota
	// Configuration means required credentials or settings are missing or invalid.
	Configuration
	// UnsupportedInput means a file type, size, or glossary format is not accepted.
	UnsupportedInput
	// ManagerParse means the style manager could not parse the model's decision.
	ManagerParse
	// ExternalCall means a model provider or transport call failed.
	ExternalCall
	// TerminologySource means a glossary file could not be parsed.
	TerminologySource
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case UnsupportedInput:
		return "unsupported input"
	case ManagerParse:
		return "manager parse"
	case ExternalCall:
		return "external call"
	case TerminologySource:
		return "terminology source"
	default:
		return "internal"
	}
}

// Sentinels for errors.Is matching against a Kind.
var (
	ErrInternal          = &Error{Kind: Internal}
	ErrConfiguration     = &Error{Kind: Configuration}
	ErrUnsupportedInput  = &Error{Kind: UnsupportedInput}
	ErrManagerParse      = &Error{Kind: ManagerParse}
	ErrExternalCall      = &Error{Kind: ExternalCall}
	ErrTerminologySource = &Error{Kind: TerminologySource}
)

// Error is a classified error. Op names the operation that failed
// ("draft chunk 2", "parse glossary terms.csv").
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
	default:
		return e.Kind.String() + " failure"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match when target is an *Error of the same Kind, so the
// package sentinels work with errors.Is at any wrapping depth.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New returns a classified error wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf returns a classified error with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of the first classified error in err's chain.
// Unclassified errors report Internal.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}

// Recoverable reports whether a session may continue after err.
// Only manager parse failures are recovered.
func Recoverable(err error) bool {
	return err != nil && errors.Is(err, ErrManagerParse)
}
