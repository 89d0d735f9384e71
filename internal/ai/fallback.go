package ai

import (
	"fmt"

	"parallel-lives-server/internal/models"
)

// fallbackToneWords are the short tone adjectives used in fallback templates.
var fallbackToneWords = map[models.Tone]string{
	models.ToneWarm:     "warm",
	models.ToneFunny:    "playful",
	models.ToneRomantic: "romantic",
	models.ToneDark:     "reflective",
}

// FallbackStory synthesizes a deterministic three-segment story from the raw
// request fields. It is used when the model keeps producing output that cannot
// be parsed into a structurally valid story, so the caller still receives a
// degraded but well-formed result.
func FallbackStory(req models.StoryRequest) *models.GeneratedStory {
	toneWord, ok := fallbackToneWords[req.Tone]
	if !ok {
		toneWord = "quiet"
	}

	personality := req.Personality
	if personality == "" {
		personality = "one-of-a-kind"
	}

	return &models.GeneratedStory{
		Title: fmt.Sprintf("A %s life in %s", toneWord, req.Career),
		Summary: fmt.Sprintf(
			"A %s story about growing up in %s and building a life around %s.",
			toneWord, req.Birthplace, req.Career,
		),
		Segments: []models.GeneratedSegment{
			{
				Title: "Where it begins",
				Content: fmt.Sprintf(
					"In %s, someone carrying the dream of %s sets out on their journey. Being %s, they choose the path of %s.",
					req.Birthplace, req.DreamRegret, personality, req.Career,
				),
				Order: 1,
			},
			{
				Title: "Growing into it",
				Content: fmt.Sprintf(
					"Year after year they grow within %s. Being %s shapes how they understand the life taking form around them.",
					req.Career, req.Relationship,
				),
				Order: 2,
			},
			{
				Title: "Looking back",
				Content: fmt.Sprintf(
					"Looking back on the road travelled, %s became a defining part of this life. Every choice shaped a path that belongs to no one else.",
					req.DreamRegret,
				),
				Order: 3,
			},
		},
	}
}
