package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"parallel-lives-server/internal/models"
)

// SanitizeModelOutput prepares raw model text for JSON parsing: it strips
// enclosing markdown code fences and, when prose surrounds the payload,
// extracts the first balanced {...} block. Braces inside JSON string literals
// are ignored while balancing.
func SanitizeModelOutput(content string) string {
	cleaned := strings.TrimSpace(content)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	if block := extractJSONBlock(cleaned); block != "" {
		return block
	}
	return cleaned
}

// extractJSONBlock returns the first balanced top-level {...} block of s, or
// "" when none exists.
func extractJSONBlock(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

// ParseGeneratedStory sanitizes and parses model output into a GeneratedStory,
// validating the structural invariants: non-empty title and summary, at least
// one segment, and non-empty title/content plus a positive order on every
// segment.
func ParseGeneratedStory(content string) (*models.GeneratedStory, error) {
	cleaned := SanitizeModelOutput(content)

	var story models.GeneratedStory
	if err := json.Unmarshal([]byte(cleaned), &story); err != nil {
		return nil, fmt.Errorf("failed to unmarshal story JSON: %w", err)
	}

	if err := validateGeneratedStory(&story); err != nil {
		return nil, err
	}
	return &story, nil
}

func validateGeneratedStory(story *models.GeneratedStory) error {
	if strings.TrimSpace(story.Title) == "" {
		return fmt.Errorf("story title is empty")
	}
	if strings.TrimSpace(story.Summary) == "" {
		return fmt.Errorf("story summary is empty")
	}
	if len(story.Segments) == 0 {
		return fmt.Errorf("story has no segments")
	}
	for i, seg := range story.Segments {
		if strings.TrimSpace(seg.Title) == "" {
			return fmt.Errorf("segment %d has an empty title", i+1)
		}
		if strings.TrimSpace(seg.Content) == "" {
			return fmt.Errorf("segment %d has empty content", i+1)
		}
		if seg.Order <= 0 {
			return fmt.Errorf("segment %d has invalid order %d", i+1, seg.Order)
		}
	}
	return nil
}
