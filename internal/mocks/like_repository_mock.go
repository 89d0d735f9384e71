package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"parallel-lives-server/internal/interfaces"
)

// MockLikeRepository is a mock type for interfaces.LikeRepository.
type MockLikeRepository struct {
	mock.Mock
}

var _ interfaces.LikeRepository = (*MockLikeRepository)(nil)

func (m *MockLikeRepository) AddLike(ctx context.Context, userID, storyID uuid.UUID) error {
	args := m.Called(ctx, userID, storyID)
	return args.Error(0)
}

func (m *MockLikeRepository) RemoveLike(ctx context.Context, userID, storyID uuid.UUID) error {
	args := m.Called(ctx, userID, storyID)
	return args.Error(0)
}

func (m *MockLikeRepository) CheckLike(ctx context.Context, userID, storyID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, storyID)
	return args.Bool(0), args.Error(1)
}
