package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/models"
)

// MockStoryRepository is a mock type for interfaces.StoryRepository.
type MockStoryRepository struct {
	mock.Mock
}

var _ interfaces.StoryRepository = (*MockStoryRepository)(nil)

func (m *MockStoryRepository) Create(ctx context.Context, querier interfaces.DBTX, story *models.Story) error {
	args := m.Called(ctx, querier, story)
	return args.Error(0)
}

func (m *MockStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *MockStoryRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *MockStoryRepository) GetSummary(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.StorySummary, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StorySummary), args.Error(1)
}

func (m *MockStoryRepository) ListPublic(ctx context.Context, filter interfaces.StoryListFilter, viewerID *uuid.UUID) ([]models.StorySummary, int64, error) {
	args := m.Called(ctx, filter, viewerID)
	var summaries []models.StorySummary
	if args.Get(0) != nil {
		summaries = args.Get(0).([]models.StorySummary)
	}
	return summaries, args.Get(1).(int64), args.Error(2)
}

func (m *MockStoryRepository) ListByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Story, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	var stories []models.Story
	if args.Get(0) != nil {
		stories = args.Get(0).([]models.Story)
	}
	return stories, args.Get(1).(int64), args.Error(2)
}

func (m *MockStoryRepository) ListLikedByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.StorySummary, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	var summaries []models.StorySummary
	if args.Get(0) != nil {
		summaries = args.Get(0).([]models.StorySummary)
	}
	return summaries, args.Get(1).(int64), args.Error(2)
}

func (m *MockStoryRepository) IncrementViewsCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStoryRepository) IncrementLikesCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStoryRepository) DecrementLikesCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStoryRepository) IncrementCommentsCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStoryRepository) DecrementCommentsCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStoryRepository) UpdateVisibility(ctx context.Context, id, userID uuid.UUID, isPublic bool) error {
	args := m.Called(ctx, id, userID, isPublic)
	return args.Error(0)
}

func (m *MockStoryRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
