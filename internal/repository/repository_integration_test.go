package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/models"
	"parallel-lives-server/internal/repository"
	"parallel-lives-server/migrations"
	"parallel-lives-server/pkg/database"
	"parallel-lives-server/pkg/migration"
)

// RepositoryIntegrationSuite runs the repositories against a real PostgreSQL
// container with the production migrations applied.
type RepositoryIntegrationSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	db          *database.Database

	users    interfaces.UserRepository
	stories  interfaces.StoryRepository
	segments interfaces.SegmentRepository
	likes    interfaces.LikeRepository
	comments interfaces.CommentRepository
}

func TestRepositoryIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositoryIntegrationSuite))
}

func (s *RepositoryIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	pool, err := database.NewFromConnString(s.ctx, connStr)
	require.NoError(s.T(), err)
	s.db = pool

	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: ".",
		MigrationsFS:   migrations.FS,
	}, s.db.Pool)
	require.NoError(s.T(), migrator.Up(s.ctx), "Failed to apply migrations")

	logger := zap.NewNop()
	s.users = repository.NewPgUserRepository(s.db.Pool, logger)
	s.stories = repository.NewPgStoryRepository(s.db.Pool, logger)
	s.segments = repository.NewPgSegmentRepository(s.db.Pool, logger)
	s.likes = repository.NewPgLikeRepository(s.db.Pool, logger)
	s.comments = repository.NewPgCommentRepository(s.db.Pool, logger)
}

func (s *RepositoryIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

func (s *RepositoryIntegrationSuite) createUser(email string) *models.User {
	user := &models.User{
		Email:        email,
		PasswordHash: "x",
		Nickname:     "tester",
		Plan:         models.PlanFree,
	}
	require.NoError(s.T(), s.users.CreateUser(s.ctx, user))
	return user
}

func (s *RepositoryIntegrationSuite) createStory(userID uuid.UUID, isPublic bool) *models.Story {
	story := &models.Story{
		UserID:    userID,
		Title:     "A Parallel Life",
		Summary:   "What could have been.",
		InputData: []byte(`{"tone":"warm"}`),
		Tone:      models.ToneWarm,
		IsPublic:  isPublic,
	}
	require.NoError(s.T(), s.stories.Create(s.ctx, s.db.Pool, story))
	return story
}

func (s *RepositoryIntegrationSuite) TestUserLifecycle() {
	user := s.createUser("lifecycle@example.com")
	s.Require().NotEqual(uuid.Nil, user.ID)
	s.Require().Equal(0, user.UsageCount)

	dup := &models.User{Email: "lifecycle@example.com", PasswordHash: "x", Nickname: "other", Plan: models.PlanFree}
	s.Require().ErrorIs(s.users.CreateUser(s.ctx, dup), models.ErrEmailAlreadyExists)

	byEmail, err := s.users.GetUserByEmail(s.ctx, "lifecycle@example.com")
	s.Require().NoError(err)
	s.Require().Equal(user.ID, byEmail.ID)

	_, err = s.users.GetUserByID(s.ctx, uuid.New())
	s.Require().ErrorIs(err, models.ErrUserNotFound)
}

func (s *RepositoryIntegrationSuite) TestChargeGenerationStopsAtPlanLimit() {
	user := s.createUser("quota@example.com")

	limit := models.PlanFree.GenerationLimit()
	for i := 0; i < limit; i++ {
		s.Require().NoError(s.users.ChargeGeneration(s.ctx, user.ID))
	}
	s.Require().ErrorIs(s.users.ChargeGeneration(s.ctx, user.ID), models.ErrQuotaExceeded)

	reloaded, err := s.users.GetUserByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Equal(limit, reloaded.UsageCount)
}

func (s *RepositoryIntegrationSuite) TestStoryWithSegments() {
	user := s.createUser("segments@example.com")
	story := s.createStory(user.ID, true)

	url := "https://cdn.example.com/2.png"
	rows := []models.StorySegment{
		{StoryID: story.ID, SegmentOrder: 1, Title: "One", Content: "First."},
		{StoryID: story.ID, SegmentOrder: 2, Title: "Two", Content: "Second.", ImageURL: &url},
	}
	s.Require().NoError(s.segments.CreateBatch(s.ctx, s.db.Pool, rows))

	persisted, err := s.segments.ListByStoryID(s.ctx, story.ID)
	s.Require().NoError(err)
	s.Require().Len(persisted, 2)
	s.Require().Equal(1, persisted[0].SegmentOrder)
	s.Require().Nil(persisted[0].ImageURL)
	s.Require().NotNil(persisted[1].ImageURL)

	illustrated, err := s.segments.AnyIllustrated(s.ctx, story.ID)
	s.Require().NoError(err)
	s.Require().True(illustrated)

	// Deleting the story cascades to its segments.
	s.Require().NoError(s.stories.Delete(s.ctx, story.ID, user.ID))
	persisted, err = s.segments.ListByStoryID(s.ctx, story.ID)
	s.Require().NoError(err)
	s.Require().Empty(persisted)
}

func (s *RepositoryIntegrationSuite) TestListPublicFiltersAndLikeState() {
	author := s.createUser("author@example.com")
	viewer := s.createUser("viewer@example.com")

	public := s.createStory(author.ID, true)
	s.createStory(author.ID, false)

	s.Require().NoError(s.likes.AddLike(s.ctx, viewer.ID, public.ID))
	s.Require().NoError(s.stories.IncrementLikesCount(s.ctx, public.ID))

	filter := interfaces.StoryListFilter{
		UserID: &author.ID,
		Tone:   models.ToneWarm,
		Page:   1,
		Limit:  10,
	}
	summaries, total, err := s.stories.ListPublic(s.ctx, filter, &viewer.ID)
	s.Require().NoError(err)
	s.Require().Equal(int64(1), total, "private stories must not be listed")
	s.Require().Len(summaries, 1)
	s.Require().Equal(public.ID, summaries[0].ID)
	s.Require().Equal("tester", summaries[0].Author.Nickname)
	s.Require().True(summaries[0].IsLiked)
	s.Require().Equal(int64(1), summaries[0].LikesCount)

	// The same listing without a viewer reports no like state.
	summaries, _, err = s.stories.ListPublic(s.ctx, filter, nil)
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Require().False(summaries[0].IsLiked)

	liked, total, err := s.stories.ListLikedByUser(s.ctx, viewer.ID, 1, 10)
	s.Require().NoError(err)
	s.Require().Equal(int64(1), total)
	s.Require().Len(liked, 1)
	s.Require().True(liked[0].IsLiked)
}

func (s *RepositoryIntegrationSuite) TestLikeConstraints() {
	user := s.createUser("likes@example.com")
	story := s.createStory(user.ID, true)

	s.Require().NoError(s.likes.AddLike(s.ctx, user.ID, story.ID))
	s.Require().ErrorIs(s.likes.AddLike(s.ctx, user.ID, story.ID), interfaces.ErrLikeAlreadyExists)

	exists, err := s.likes.CheckLike(s.ctx, user.ID, story.ID)
	s.Require().NoError(err)
	s.Require().True(exists)

	s.Require().NoError(s.likes.RemoveLike(s.ctx, user.ID, story.ID))
	s.Require().ErrorIs(s.likes.RemoveLike(s.ctx, user.ID, story.ID), interfaces.ErrLikeNotFound)

	s.Require().ErrorIs(s.likes.AddLike(s.ctx, user.ID, uuid.New()), models.ErrStoryNotFound)
}

func (s *RepositoryIntegrationSuite) TestCommentsWithAuthor() {
	user := s.createUser("comments@example.com")
	story := s.createStory(user.ID, true)

	comment := &models.Comment{UserID: user.ID, StoryID: story.ID, Content: "lovely"}
	s.Require().NoError(s.comments.Create(s.ctx, comment))
	s.Require().NotEqual(uuid.Nil, comment.ID)

	listed, total, err := s.comments.ListByStoryID(s.ctx, story.ID, 1, 10)
	s.Require().NoError(err)
	s.Require().Equal(int64(1), total)
	s.Require().Len(listed, 1)
	s.Require().Equal("tester", listed[0].Author.Nickname)

	s.Require().NoError(s.comments.Delete(s.ctx, comment.ID))
	s.Require().ErrorIs(s.comments.Delete(s.ctx, comment.ID), models.ErrCommentNotFound)
}

func (s *RepositoryIntegrationSuite) TestVisibilityUpdate() {
	user := s.createUser("visibility@example.com")
	story := s.createStory(user.ID, true)

	s.Require().NoError(s.stories.UpdateVisibility(s.ctx, story.ID, user.ID, false))
	s.Require().ErrorIs(
		s.stories.UpdateVisibility(s.ctx, story.ID, uuid.New(), true),
		models.ErrStoryNotFound,
		"only the owner can change visibility",
	)

	reloaded, err := s.stories.GetByID(s.ctx, story.ID)
	s.Require().NoError(err)
	s.Require().False(reloaded.IsPublic)
}

func (s *RepositoryIntegrationSuite) TestExecuteInTransactionRollsBack() {
	user := s.createUser("txn@example.com")

	err := s.db.ExecuteInTransaction(s.ctx, func(tx pgx.Tx) error {
		story := &models.Story{
			UserID:    user.ID,
			Title:     "Doomed",
			Summary:   "Never committed.",
			InputData: []byte(`{"tone":"warm"}`),
			Tone:      models.ToneWarm,
			IsPublic:  true,
		}
		if err := s.stories.Create(s.ctx, tx, story); err != nil {
			return err
		}
		return pgx.ErrTxClosed
	})
	s.Require().Error(err)

	_, total, listErr := s.stories.ListByUserID(s.ctx, user.ID, 1, 10)
	s.Require().NoError(listErr)
	s.Require().Equal(int64(0), total)
}
