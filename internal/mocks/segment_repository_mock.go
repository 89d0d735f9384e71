package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/models"
)

// MockSegmentRepository is a mock type for interfaces.SegmentRepository.
type MockSegmentRepository struct {
	mock.Mock
}

var _ interfaces.SegmentRepository = (*MockSegmentRepository)(nil)

func (m *MockSegmentRepository) CreateBatch(ctx context.Context, querier interfaces.DBTX, segments []models.StorySegment) error {
	args := m.Called(ctx, querier, segments)
	return args.Error(0)
}

func (m *MockSegmentRepository) ListByStoryID(ctx context.Context, storyID uuid.UUID) ([]models.StorySegment, error) {
	args := m.Called(ctx, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StorySegment), args.Error(1)
}

func (m *MockSegmentRepository) AnyIllustrated(ctx context.Context, storyID uuid.UUID) (bool, error) {
	args := m.Called(ctx, storyID)
	return args.Bool(0), args.Error(1)
}
