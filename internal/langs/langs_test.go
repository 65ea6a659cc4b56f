package langs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/agentran/internal/failure"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantCode string
	}{
		{"English", "English", "en"},
		{"german", "German", "de"},
		{" uk ", "Ukrainian", "uk"},
		{"de", "German", "de"},
		{"pt-BR", "Portuguese", "pt"},
		{"zh", "Chinese (Simplified)", "zh"},
		{"zh-TW", "Chinese (Traditional)", "zh"},
		{"zh-Hant", "Chinese (Traditional)", "zh"},
		{"chinese (traditional)", "Chinese (Traditional)", "zh"},
		{"Ukrainian", "Ukrainian", "uk"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantCode, got.Code())
		})
	}
}

func TestNormalize_Unknown(t *testing.T) {
	for _, input := range []string{"", "   ", "Klingonese"} {
		_, err := Normalize(input)
		require.Error(t, err, input)
		assert.True(t, errors.Is(err, failure.ErrConfiguration), input)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Len(t, names, len(Supported))
	assert.Equal(t, "English", names[0])
	assert.Contains(t, names, "Greek")
}
