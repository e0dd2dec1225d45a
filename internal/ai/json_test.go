package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTitle string
		wantErr   bool
	}{
		{name: "plain", input: `{"title":"Q3 Report"}`, wantTitle: "Q3 Report"},
		{name: "fenced", input: "```json\n{\"title\":\"Memo\"}\n```", wantTitle: "Memo"},
		{name: "chatter around", input: "Here you go:\n{\"title\":\"Invoice\"}\nThanks!", wantTitle: "Invoice"},
		{name: "prose", input: "I cannot help with that request.", wantErr: true},
		{name: "array", input: `[{"title":"x"}]`, wantErr: true},
		{name: "broken", input: `{"title": "x",}`, wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ExtractJSONObject(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotJSONObject)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, obj["title"])
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, estimateTokens())
	assert.Equal(t, 1, estimateTokens("abc"))
	assert.Equal(t, 2, estimateTokens("abcd", "efg"))
}
