package ai

import (
	"fmt"
	"strings"

	"parallel-lives-server/internal/models"
)

const systemPrompt = "You are a professional storyteller who writes immersive parallel-life stories. " +
	"Always respond strictly in the JSON format the user requests, with no commentary outside the JSON."

// toneDescriptors maps the user-selected tone to the narrative mood the model
// is asked to keep.
var toneDescriptors = map[models.Tone]string{
	models.ToneWarm:     "warm and touching",
	models.ToneFunny:    "humorous and lighthearted",
	models.ToneRomantic: "romantic and dreamy",
	models.ToneDark:     "contemplative and dark",
}

// toneDescriptor returns the prompt descriptor for a tone, with a neutral
// default for anything unexpected.
func toneDescriptor(tone models.Tone) string {
	if d, ok := toneDescriptors[tone]; ok {
		return d
	}
	return "balanced and sincere"
}

// buildStoryPrompt renders the user prompt for a story generation request.
// The prompt embeds every request field and instructs the model to emit strict
// JSON with title, summary and ordered segments. Five life stages are
// requested, or four plus a "creative reference" instruction when the user
// supplied their real life story.
func buildStoryPrompt(req models.StoryRequest) string {
	var b strings.Builder

	b.WriteString("Write a parallel-life story in the second person, so the reader feels they are living it. ")
	b.WriteString("Weave the settings below into the narrative naturally instead of listing them. ")
	b.WriteString("The story must flow smoothly and stay believable.\n\n")

	b.WriteString("Background:\n")
	fmt.Fprintf(&b, "- Birthplace / upbringing: %s\n", req.Birthplace)
	fmt.Fprintf(&b, "- Career path: %s\n", req.Career)
	personality := req.Personality
	if personality == "" {
		personality = "not specified"
	}
	fmt.Fprintf(&b, "- Personality: %s\n", personality)
	fmt.Fprintf(&b, "- Gender: %s\n", req.Gender)
	fmt.Fprintf(&b, "- Birth date: %s (choose life stages appropriate for this age)\n", req.BirthDate)
	fmt.Fprintf(&b, "- Relationship status: %s\n", req.Relationship)
	fmt.Fprintf(&b, "- Dream or regret: %s\n", req.DreamRegret)
	fmt.Fprintf(&b, "- Story mood: %s (keep the overall tone, emotional swings within stages are welcome)\n", toneDescriptor(req.Tone))
	if req.OriginalStory != "" {
		fmt.Fprintf(&b, "- The reader's real life story for reference: %s\n", req.OriginalStory)
	}

	b.WriteString("\nRequirements:\n")
	b.WriteString("1. Title: evocative and visual, reflecting the parallel-life theme.\n")
	b.WriteString("2. Life overview (under 100 characters): one vivid sentence that captures this other life.\n")
	n := 3
	if req.OriginalStory != "" {
		fmt.Fprintf(&b, "%d. Creative reference: build a story that is recognizably similar to the reader's real life yet diverges at key choices, keeping the core personality but exploring different opportunities and environments.\n", n)
		n++
	}
	fmt.Fprintf(&b, "%d. Five life stages, each with an evocative title and at least 500 characters of content rich in sensory detail, reflecting the career, personality and the dream or regret, with the dream or regret fully realized by the end. Address the reader as \"you\" throughout.\n", n)
	n++
	fmt.Fprintf(&b, "%d. Keep the story uplifting and imaginative while provoking reflection.\n", n)

	b.WriteString(`
Output format (must be valid JSON):
{
  "title": "story title",
  "summary": "life overview",
  "segments": [
    {"title": "stage title", "content": "stage content (at least 500 characters)", "order": 1},
    {"title": "stage title", "content": "stage content (at least 500 characters)", "order": 2}
  ]
}
`)

	return b.String()
}
