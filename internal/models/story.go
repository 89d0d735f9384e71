package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Tone is the narrative mood selected by the user.
// Matches the 'tone' CHECK constraint in the stories table.
type Tone string

const (
	ToneWarm     Tone = "warm"
	ToneFunny    Tone = "funny"
	ToneRomantic Tone = "romantic"
	ToneDark     Tone = "dark"
)

// IsValid reports whether t is one of the supported tones.
func (t Tone) IsValid() bool {
	switch t {
	case ToneWarm, ToneFunny, ToneRomantic, ToneDark:
		return true
	}
	return false
}

// StoryRequest is the biographical form a user submits to generate a story.
// It is persisted verbatim on the story row (input_data) so regeneration can
// replay it.
type StoryRequest struct {
	Birthplace    string `json:"birthplace"`
	Career        string `json:"career"`
	Personality   string `json:"personality,omitempty"`
	Gender        string `json:"gender"`
	BirthDate     string `json:"birth_date"`
	Relationship  string `json:"relationship"`
	DreamRegret   string `json:"dream_regret"`
	OriginalStory string `json:"original_story,omitempty"`
	Tone          Tone   `json:"tone"`
}

// GeneratedStory is the transient output of the text generation client.
type GeneratedStory struct {
	Title    string             `json:"title"`
	Summary  string             `json:"summary"`
	Segments []GeneratedSegment `json:"segments"`
}

// GeneratedSegment is one life-stage chapter as produced by the model.
type GeneratedSegment struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// Story represents a persisted parallel-life story.
type Story struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserID        uuid.UUID       `db:"user_id" json:"user_id"`
	Title         string          `db:"title" json:"title"`
	Summary       string          `db:"summary" json:"summary"`
	InputData     json.RawMessage `db:"input_data" json:"input_data"`
	Tone          Tone            `db:"tone" json:"tone"`
	CoverImageURL *string         `db:"cover_image_url" json:"cover_image_url,omitempty"`
	// Illustration policy recorded at creation time. Regeneration reads these
	// instead of inferring intent from NULL checks; rows created before the
	// columns existed fall back to inference (see StoryService.Regenerate).
	IllustrateCover    bool      `db:"illustrate_cover" json:"illustrate_cover"`
	IllustrateSegments bool      `db:"illustrate_segments" json:"illustrate_segments"`
	IsPublic           bool      `db:"is_public" json:"is_public"`
	LikesCount         int64     `db:"likes_count" json:"likes_count"`
	CommentsCount      int64     `db:"comments_count" json:"comments_count"`
	ViewsCount         int64     `db:"views_count" json:"views_count"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
	// Computed per viewer in SELECTs, not a stored column.
	IsLiked bool `db:"is_liked" json:"is_liked"`
}

// StorySegment represents one persisted chapter of a story.
type StorySegment struct {
	ID           uuid.UUID `db:"id" json:"id"`
	StoryID      uuid.UUID `db:"story_id" json:"story_id"`
	SegmentOrder int       `db:"segment_order" json:"segment_order"`
	Title        string    `db:"title" json:"title"`
	Content      string    `db:"content" json:"content"`
	ImageURL     *string   `db:"image_url" json:"image_url,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// StoryAuthor is the public slice of user data attached to story listings.
type StoryAuthor struct {
	Nickname  string  `db:"nickname" json:"nickname"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url,omitempty"`
}

// StorySummary is a story row joined with its author for list endpoints.
type StorySummary struct {
	Story
	Author StoryAuthor `db:"author" json:"user"`
}

// Comment represents a user comment on a public story.
type Comment struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	UserID    uuid.UUID   `db:"user_id" json:"user_id"`
	StoryID   uuid.UUID   `db:"story_id" json:"story_id"`
	Content   string      `db:"content" json:"content"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	Author    StoryAuthor `db:"author" json:"user"`
}
