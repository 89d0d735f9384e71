package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/models"
)

const maxCommentLength = 500

// CommentService manages comments on public stories.
type CommentService struct {
	comments interfaces.CommentRepository
	stories  interfaces.StoryRepository
	logger   *zap.Logger
}

func NewCommentService(comments interfaces.CommentRepository, stories interfaces.StoryRepository, logger *zap.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		stories:  stories,
		logger:   logger.Named("CommentService"),
	}
}

// List returns a page of comments on a story visible to the viewer.
func (s *CommentService) List(ctx context.Context, storyID uuid.UUID, viewerID *uuid.UUID, page, limit int) ([]models.Comment, int64, error) {
	if err := s.checkStoryVisible(ctx, storyID, viewerID); err != nil {
		return nil, 0, err
	}
	page, limit = clampPage(page, limit)
	return s.comments.ListByStoryID(ctx, storyID, page, limit)
}

// Create posts a comment on a story visible to the user. Content must be
// non-empty after trimming and at most 500 characters.
func (s *CommentService) Create(ctx context.Context, userID, storyID uuid.UUID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", models.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, models.ErrCommentTooLong
	}

	if err := s.checkStoryVisible(ctx, storyID, &userID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UserID:  userID,
		StoryID: storyID,
		Content: content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.stories.IncrementCommentsCount(ctx, storyID); err != nil {
		s.logger.Error("Failed to increment comments counter",
			zap.String("storyID", storyID.String()), zap.Error(err))
	}

	full, err := s.comments.GetByID(ctx, comment.ID)
	if err != nil {
		// The comment exists; return it without the joined author.
		s.logger.Warn("Failed to reload created comment", zap.String("commentID", comment.ID.String()), zap.Error(err))
		return comment, nil
	}
	return full, nil
}

// Delete removes the user's own comment.
func (s *CommentService) Delete(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return models.ErrForbidden
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}
	if err := s.stories.DecrementCommentsCount(ctx, comment.StoryID); err != nil {
		s.logger.Error("Failed to decrement comments counter",
			zap.String("storyID", comment.StoryID.String()), zap.Error(err))
	}
	return nil
}

// checkStoryVisible hides private stories from everyone but their owner.
func (s *CommentService) checkStoryVisible(ctx context.Context, storyID uuid.UUID, viewerID *uuid.UUID) error {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return err
	}
	if !story.IsPublic && (viewerID == nil || *viewerID != story.UserID) {
		return models.ErrStoryNotFound
	}
	return nil
}
