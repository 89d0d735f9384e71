package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/models"
)

// LikeService toggles likes on public stories and keeps the denormalized
// likes counter in step.
type LikeService struct {
	likes   interfaces.LikeRepository
	stories interfaces.StoryRepository
	logger  *zap.Logger
}

func NewLikeService(likes interfaces.LikeRepository, stories interfaces.StoryRepository, logger *zap.Logger) *LikeService {
	return &LikeService{
		likes:   likes,
		stories: stories,
		logger:  logger.Named("LikeService"),
	}
}

// Toggle likes the story if the user has not liked it yet, otherwise removes
// the like. Returns whether the story is liked after the call. Private
// stories are only likeable by their owner.
func (s *LikeService) Toggle(ctx context.Context, userID, storyID uuid.UUID) (bool, error) {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return false, err
	}
	if !story.IsPublic && story.UserID != userID {
		return false, models.ErrStoryNotFound
	}

	logFields := []zap.Field{zap.String("userID", userID.String()), zap.String("storyID", storyID.String())}

	err = s.likes.AddLike(ctx, userID, storyID)
	if err == nil {
		if err := s.stories.IncrementLikesCount(ctx, storyID); err != nil {
			s.logger.Error("Failed to increment likes counter", append(logFields, zap.Error(err))...)
		}
		return true, nil
	}
	if !errors.Is(err, interfaces.ErrLikeAlreadyExists) {
		return false, err
	}

	if err := s.likes.RemoveLike(ctx, userID, storyID); err != nil {
		// Removed by a concurrent request; treat as already unliked.
		if errors.Is(err, interfaces.ErrLikeNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := s.stories.DecrementLikesCount(ctx, storyID); err != nil {
		s.logger.Error("Failed to decrement likes counter", append(logFields, zap.Error(err))...)
	}
	return false, nil
}
