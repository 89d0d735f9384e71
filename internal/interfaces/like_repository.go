package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// LikeRepository defines persistence operations for story likes.
type LikeRepository interface {
	// AddLike inserts a like record.
	// Returns ErrLikeAlreadyExists if the user already liked the story and
	// models.ErrStoryNotFound on a foreign-key violation.
	AddLike(ctx context.Context, userID, storyID uuid.UUID) error

	// RemoveLike deletes a like record.
	// Returns ErrLikeNotFound if there was no like.
	RemoveLike(ctx context.Context, userID, storyID uuid.UUID) error

	// CheckLike reports whether the user has liked the story.
	CheckLike(ctx context.Context, userID, storyID uuid.UUID) (bool, error)
}
