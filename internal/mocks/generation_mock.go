package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"parallel-lives-server/internal/models"
)

// MockTextGenerator is a mock type for service.TextGenerator. The interface
// assertions live in the service test files; importing the service package
// here would cycle through its tests.
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, req models.StoryRequest) (*models.GeneratedStory, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GeneratedStory), args.Error(1)
}

// MockIllustrationScheduler is a mock type for service.IllustrationScheduler.
type MockIllustrationScheduler struct {
	mock.Mock
}

func (m *MockIllustrationScheduler) GenerateCover(ctx context.Context, title, summary string, tone models.Tone) *string {
	args := m.Called(ctx, title, summary, tone)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*string)
}

func (m *MockIllustrationScheduler) IllustrateSegments(ctx context.Context, segments []models.GeneratedSegment) (map[int]string, []int) {
	args := m.Called(ctx, segments)
	var urls map[int]string
	if args.Get(0) != nil {
		urls = args.Get(0).(map[int]string)
	}
	var failed []int
	if args.Get(1) != nil {
		failed = args.Get(1).([]int)
	}
	return urls, failed
}
