package image

import (
	"fmt"
	"strings"

	"parallel-lives-server/internal/models"
)

// toneStyles maps the narrative tone to visual style keywords appended to
// cover prompts.
var toneStyles = map[models.Tone]string{
	models.ToneWarm:     "warm lighting, soft colors, cozy atmosphere",
	models.ToneFunny:    "bright colors, playful composition, whimsical details",
	models.ToneRomantic: "golden hour light, dreamy bokeh, tender mood",
	models.ToneDark:     "muted palette, dramatic shadows, melancholic atmosphere",
}

const segmentExcerptLimit = 500

// BuildCoverPrompt builds the illustration prompt for a story cover from its
// title, summary and tone.
func BuildCoverPrompt(title, summary string, tone models.Tone) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Book cover illustration for a life story titled %q. ", title)
	b.WriteString(summary)

	if style, ok := toneStyles[tone]; ok {
		b.WriteString(". ")
		b.WriteString(style)
	}
	return b.String()
}

// BuildSegmentPrompt builds the illustration prompt for one chapter. Only the
// opening excerpt of the content is used; the configured style suffix keeps
// chapter images visually consistent.
func BuildSegmentPrompt(segment models.GeneratedSegment, styleSuffix string) string {
	excerpt := segment.Content
	if runes := []rune(excerpt); len(runes) > segmentExcerptLimit {
		excerpt = string(runes[:segmentExcerptLimit])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Illustration for a chapter titled %q. ", segment.Title)
	b.WriteString(excerpt)
	if styleSuffix != "" {
		b.WriteString(". ")
		b.WriteString(styleSuffix)
	}
	return b.String()
}
