package interfaces

import (
	"context"

	"parallel-lives-server/internal/models"

	"github.com/google/uuid"
)

// CommentRepository defines persistence operations for story comments.
type CommentRepository interface {
	// Create inserts a comment and fills in the generated ID and timestamp.
	Create(ctx context.Context, comment *models.Comment) error

	// GetByID retrieves a comment.
	// Returns models.ErrCommentNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)

	// ListByStoryID returns a page of comments for a story, newest first, with
	// authors joined, plus the total count.
	ListByStoryID(ctx context.Context, storyID uuid.UUID, page, limit int) ([]models.Comment, int64, error)

	// Delete removes a comment.
	// Returns models.ErrCommentNotFound when no row matches.
	Delete(ctx context.Context, id uuid.UUID) error
}
