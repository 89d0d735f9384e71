package interfaces

import (
	"context"

	"parallel-lives-server/internal/models"

	"github.com/google/uuid"
)

// StorySort is the ordering applied to public story listings.
type StorySort string

const (
	SortLatest  StorySort = "latest"
	SortOldest  StorySort = "oldest"
	SortPopular StorySort = "popular"
)

// StoryListFilter narrows and orders public story listings.
type StoryListFilter struct {
	// UserID limits results to stories authored by this user when non-nil.
	UserID *uuid.UUID
	// Tone limits results to the given tone when non-empty.
	Tone models.Tone
	Sort StorySort
	Page int
	// Limit is the page size; callers are expected to clamp it.
	Limit int
}

// StoryRepository defines persistence operations for stories.
type StoryRepository interface {
	// Create inserts a new story row and fills in the generated ID and
	// timestamps. Accepts a DBTX so it can run inside a transaction.
	Create(ctx context.Context, querier DBTX, story *models.Story) error

	// GetByID retrieves a story regardless of visibility.
	// Returns models.ErrStoryNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)

	// GetByIDForUser retrieves a story only if it is owned by userID.
	// Returns models.ErrStoryNotFound if absent or owned by someone else.
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Story, error)

	// GetSummary retrieves a story joined with its author. When viewerID is
	// non-nil the IsLiked flag reflects that viewer's like.
	GetSummary(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.StorySummary, error)

	// ListPublic returns a page of public stories with authors plus the total
	// count of matching rows. IsLiked is filled for viewerID when non-nil.
	ListPublic(ctx context.Context, filter StoryListFilter, viewerID *uuid.UUID) ([]models.StorySummary, int64, error)

	// ListByUserID returns a page of the user's own stories, newest first,
	// plus the total count.
	ListByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Story, int64, error)

	// ListLikedByUser returns a page of public stories the user has liked,
	// ordered by like time descending.
	ListLikedByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.StorySummary, int64, error)

	// IncrementViewsCount bumps views_count by one.
	IncrementViewsCount(ctx context.Context, id uuid.UUID) error

	// IncrementLikesCount / DecrementLikesCount maintain the denormalized
	// likes counter. Decrement never takes the counter below zero.
	IncrementLikesCount(ctx context.Context, id uuid.UUID) error
	DecrementLikesCount(ctx context.Context, id uuid.UUID) error

	// IncrementCommentsCount / DecrementCommentsCount maintain the
	// denormalized comments counter.
	IncrementCommentsCount(ctx context.Context, id uuid.UUID) error
	DecrementCommentsCount(ctx context.Context, id uuid.UUID) error

	// UpdateVisibility sets is_public for a story owned by userID.
	// Returns models.ErrStoryNotFound when no owned row matches.
	UpdateVisibility(ctx context.Context, id, userID uuid.UUID, isPublic bool) error

	// Delete removes a story owned by userID; segments, likes and comments go
	// with it via ON DELETE CASCADE. Returns models.ErrStoryNotFound when no
	// owned row matches.
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// SegmentRepository defines persistence operations for story segments.
type SegmentRepository interface {
	// CreateBatch inserts all segments of a story in one round trip.
	CreateBatch(ctx context.Context, querier DBTX, segments []models.StorySegment) error

	// ListByStoryID returns the segments of a story ordered by segment_order.
	ListByStoryID(ctx context.Context, storyID uuid.UUID) ([]models.StorySegment, error)

	// AnyIllustrated reports whether at least one segment of the story has a
	// non-null image_url. Used to derive the legacy illustration policy.
	AnyIllustrated(ctx context.Context, storyID uuid.UUID) (bool, error)
}
