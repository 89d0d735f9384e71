package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/mocks"
	"parallel-lives-server/internal/models"
)

func newLikeService(t *testing.T) (*LikeService, *mocks.MockLikeRepository, *mocks.MockStoryRepository) {
	t.Helper()
	likes := new(mocks.MockLikeRepository)
	stories := new(mocks.MockStoryRepository)
	return NewLikeService(likes, stories, zap.NewNop()), likes, stories
}

func publicStory(id uuid.UUID) *models.Story {
	return &models.Story{ID: id, UserID: uuid.New(), IsPublic: true}
}

func TestLikeServiceToggle_AddsLike(t *testing.T) {
	svc, likes, stories := newLikeService(t)
	userID := uuid.New()
	storyID := uuid.New()

	stories.On("GetByID", mock.Anything, storyID).Return(publicStory(storyID), nil).Once()
	likes.On("AddLike", mock.Anything, userID, storyID).Return(nil).Once()
	stories.On("IncrementLikesCount", mock.Anything, storyID).Return(nil).Once()

	liked, err := svc.Toggle(t.Context(), userID, storyID)

	require.NoError(t, err)
	assert.True(t, liked)
	likes.AssertExpectations(t)
	stories.AssertExpectations(t)
}

func TestLikeServiceToggle_RemovesExistingLike(t *testing.T) {
	svc, likes, stories := newLikeService(t)
	userID := uuid.New()
	storyID := uuid.New()

	stories.On("GetByID", mock.Anything, storyID).Return(publicStory(storyID), nil).Once()
	likes.On("AddLike", mock.Anything, userID, storyID).Return(interfaces.ErrLikeAlreadyExists).Once()
	likes.On("RemoveLike", mock.Anything, userID, storyID).Return(nil).Once()
	stories.On("DecrementLikesCount", mock.Anything, storyID).Return(nil).Once()

	liked, err := svc.Toggle(t.Context(), userID, storyID)

	require.NoError(t, err)
	assert.False(t, liked)
	likes.AssertExpectations(t)
	stories.AssertExpectations(t)
}

func TestLikeServiceToggle_ConcurrentUnlikeIsQuiet(t *testing.T) {
	svc, likes, stories := newLikeService(t)
	userID := uuid.New()
	storyID := uuid.New()

	stories.On("GetByID", mock.Anything, storyID).Return(publicStory(storyID), nil).Once()
	likes.On("AddLike", mock.Anything, userID, storyID).Return(interfaces.ErrLikeAlreadyExists).Once()
	likes.On("RemoveLike", mock.Anything, userID, storyID).Return(interfaces.ErrLikeNotFound).Once()

	liked, err := svc.Toggle(t.Context(), userID, storyID)

	require.NoError(t, err)
	assert.False(t, liked)
	stories.AssertNotCalled(t, "DecrementLikesCount", mock.Anything, mock.Anything)
}

func TestLikeServiceToggle_PrivateStoryHiddenFromOthers(t *testing.T) {
	svc, likes, stories := newLikeService(t)
	storyID := uuid.New()

	private := &models.Story{ID: storyID, UserID: uuid.New(), IsPublic: false}
	stories.On("GetByID", mock.Anything, storyID).Return(private, nil).Once()

	_, err := svc.Toggle(t.Context(), uuid.New(), storyID)

	require.ErrorIs(t, err, models.ErrStoryNotFound)
	likes.AssertNotCalled(t, "AddLike", mock.Anything, mock.Anything, mock.Anything)
}

func TestLikeServiceToggle_OwnerCanLikeOwnPrivateStory(t *testing.T) {
	svc, likes, stories := newLikeService(t)
	ownerID := uuid.New()
	storyID := uuid.New()

	private := &models.Story{ID: storyID, UserID: ownerID, IsPublic: false}
	stories.On("GetByID", mock.Anything, storyID).Return(private, nil).Once()
	likes.On("AddLike", mock.Anything, ownerID, storyID).Return(nil).Once()
	stories.On("IncrementLikesCount", mock.Anything, storyID).Return(nil).Once()

	liked, err := svc.Toggle(t.Context(), ownerID, storyID)

	require.NoError(t, err)
	assert.True(t, liked)
}
