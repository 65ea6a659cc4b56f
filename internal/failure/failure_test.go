package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("failed to translate: %w", New(ExternalCall, "reflect chunk 2", errors.New("connection reset")))

	assert.True(t, errors.Is(err, ErrExternalCall))
	assert.False(t, errors.Is(err, ErrManagerParse))
	assert.Equal(t, ExternalCall, KindOf(err))
	assert.Contains(t, err.Error(), "reflect chunk 2: connection reset")
}

func TestError_UnwrapReachesCause(t *testing.T) {
	cause := errors.New("boom")
	err := New(TerminologySource, "parse glossary", cause)
	assert.ErrorIs(t, err, cause)
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
}

func TestRecoverable(t *testing.T) {
	assert.True(t, Recoverable(Newf(ManagerParse, "decide", "no JSON object in %q", "hello")))
	assert.False(t, Recoverable(New(ExternalCall, "draft", errors.New("timeout"))))
	assert.False(t, Recoverable(nil))
}

func TestError_Messages(t *testing.T) {
	assert.Equal(t, "configuration failure", (&Error{Kind: Configuration}).Error())
	assert.Equal(t, "load: unsupported input failure", (&Error{Kind: UnsupportedInput, Op: "load"}).Error())
}
