package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/models"
)

// MockCommentRepository is a mock type for interfaces.CommentRepository.
type MockCommentRepository struct {
	mock.Mock
}

var _ interfaces.CommentRepository = (*MockCommentRepository)(nil)

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByStoryID(ctx context.Context, storyID uuid.UUID, page, limit int) ([]models.Comment, int64, error) {
	args := m.Called(ctx, storyID, page, limit)
	var comments []models.Comment
	if args.Get(0) != nil {
		comments = args.Get(0).([]models.Comment)
	}
	return comments, args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
