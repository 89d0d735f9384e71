package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validStoryJSON = `{
  "title": "Another Road",
  "summary": "A life that took the other turn.",
  "segments": [
    {"title": "Childhood", "content": "It began in a small town.", "order": 1},
    {"title": "Later", "content": "Years passed quickly.", "order": 2}
  ]
}`

func TestSanitizeModelOutput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain json without fences",
			input: `{"title": "x"}`,
			want:  `{"title": "x"}`,
		},
		{
			name:  "json code fence",
			input: "```json\n{\"title\": \"x\"}\n```",
			want:  `{"title": "x"}`,
		},
		{
			name:  "bare code fence",
			input: "```\n{\"title\": \"x\"}\n```",
			want:  `{"title": "x"}`,
		},
		{
			name:  "fence with trailing prose",
			input: "Here is your story:\n```json\n{\"title\": \"x\"}\n```\nHope you like it!",
			want:  `{"title": "x"}`,
		},
		{
			name:  "leading prose without fence",
			input: "Sure! {\"title\": \"x\"} Done.",
			want:  `{"title": "x"}`,
		},
		{
			name:  "nested braces inside string values",
			input: `prefix {"title": "weird {but valid} title", "summary": "ok"} suffix`,
			want:  `{"title": "weird {but valid} title", "summary": "ok"}`,
		},
		{
			name:  "escaped quotes inside strings",
			input: `{"title": "she said \"hi\" {once}"}`,
			want:  `{"title": "she said \"hi\" {once}"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeModelOutput(tt.input))
		})
	}
}

func TestParseGeneratedStory(t *testing.T) {
	t.Run("valid story", func(t *testing.T) {
		story, err := ParseGeneratedStory(validStoryJSON)
		require.NoError(t, err)
		assert.Equal(t, "Another Road", story.Title)
		require.Len(t, story.Segments, 2)
		assert.Equal(t, 1, story.Segments[0].Order)
	})

	t.Run("valid story wrapped in fence and prose", func(t *testing.T) {
		story, err := ParseGeneratedStory("Of course!\n```json\n" + validStoryJSON + "\n```\nEnjoy.")
		require.NoError(t, err)
		assert.Equal(t, "Another Road", story.Title)
	})

	t.Run("not json at all", func(t *testing.T) {
		_, err := ParseGeneratedStory("I am sorry, I cannot do that.")
		assert.Error(t, err)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := ParseGeneratedStory(`{"title": "", "summary": "s", "segments": [{"title": "a", "content": "b", "order": 1}]}`)
		assert.Error(t, err)
	})

	t.Run("no segments", func(t *testing.T) {
		_, err := ParseGeneratedStory(`{"title": "t", "summary": "s", "segments": []}`)
		assert.Error(t, err)
	})

	t.Run("segment with zero order", func(t *testing.T) {
		_, err := ParseGeneratedStory(`{"title": "t", "summary": "s", "segments": [{"title": "a", "content": "b", "order": 0}]}`)
		assert.Error(t, err)
	})
}
