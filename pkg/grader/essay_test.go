package grader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Result
	}{
		{"plain json", `{"score": 8.5, "feedback": "Solid answer."}`, Result{Score: 8.5, Feedback: "Solid answer."}},
		{"fenced", "```json\n{\"score\": 3, \"feedback\": \"Too brief.\"}\n```", Result{Score: 3, Feedback: "Too brief."}},
		{"fenced without language", "```\n{\"score\": 0, \"feedback\": \"Off topic.\"}\n```", Result{Score: 0, Feedback: "Off topic."}},
		{"surrounding whitespace", "  {\"score\": 10, \"feedback\": \"Perfect.\"}\n", Result{Score: 10, Feedback: "Perfect."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResult(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseResultRejectsGarbage(t *testing.T) {
	_, err := parseResult("the student did well, 8/10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad model response")
}

func TestNewEssayGraderRequiresKey(t *testing.T) {
	_, err := NewEssayGrader(t.Context(), "", "gemini-2.0-flash")
	require.Error(t, err)
}
