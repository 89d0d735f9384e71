package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/models"
)

// TextGenerator produces a validated story for a request.
type TextGenerator interface {
	Generate(ctx context.Context, req models.StoryRequest) (*models.GeneratedStory, error)
}

// IllustrationScheduler produces illustrations for a generated story.
type IllustrationScheduler interface {
	// GenerateCover returns a cover URL or nil; it never fails the caller.
	GenerateCover(ctx context.Context, title, summary string, tone models.Tone) *string
	// IllustrateSegments returns image URLs keyed by segment order plus the
	// orders that exhausted their attempts.
	IllustrateSegments(ctx context.Context, segments []models.GeneratedSegment) (map[int]string, []int)
}

// CreateStoryInput is the user-facing story creation request.
type CreateStoryInput struct {
	Request        models.StoryRequest
	GenerateImages bool
	IsPublic       *bool // nil means public
}

// CreateStoryResult is the caller-facing outcome of story creation: the
// persisted story, its segments and the orders of segments whose illustration
// failed. A failed cover is not reported here.
type CreateStoryResult struct {
	Story                  *models.Story         `json:"story"`
	Segments               []models.StorySegment `json:"segments"`
	FailedImageGenerations []int                 `json:"failed_image_generations"`
}

// StoryService orchestrates story generation and owns story browsing,
// visibility and deletion.
type StoryService struct {
	db        interfaces.DBTX
	users     interfaces.UserRepository
	stories   interfaces.StoryRepository
	segments  interfaces.SegmentRepository
	generator TextGenerator
	scheduler IllustrationScheduler
	logger    *zap.Logger
}

func NewStoryService(
	db interfaces.DBTX,
	users interfaces.UserRepository,
	stories interfaces.StoryRepository,
	segments interfaces.SegmentRepository,
	generator TextGenerator,
	scheduler IllustrationScheduler,
	logger *zap.Logger,
) *StoryService {
	return &StoryService{
		db:        db,
		users:     users,
		stories:   stories,
		segments:  segments,
		generator: generator,
		scheduler: scheduler,
		logger:    logger.Named("StoryService"),
	}
}

// Create runs the full generation pipeline: validate, quota check, text
// generation, optional illustrations, persistence, quota charge.
func (s *StoryService) Create(ctx context.Context, userID uuid.UUID, input CreateStoryInput) (*CreateStoryResult, error) {
	if err := validateStoryRequest(input.Request); err != nil {
		return nil, err
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}
	return s.run(ctx, userID, input.Request, input.GenerateImages, input.GenerateImages, isPublic)
}

// Regenerate replays the stored request of an owned story into a new story
// row. The illustration policy comes from the flags persisted at creation;
// rows that predate those columns fall back to inspecting which images the
// original actually has.
func (s *StoryService) Regenerate(ctx context.Context, userID, storyID uuid.UUID) (*CreateStoryResult, error) {
	original, err := s.stories.GetByIDForUser(ctx, storyID, userID)
	if err != nil {
		return nil, err
	}

	illustrateCover := original.IllustrateCover
	illustrateSegments := original.IllustrateSegments
	if !illustrateCover && !illustrateSegments {
		illustrateCover = original.CoverImageURL != nil
		illustrateSegments, err = s.segments.AnyIllustrated(ctx, storyID)
		if err != nil {
			return nil, err
		}
	}

	var req models.StoryRequest
	if err := json.Unmarshal(original.InputData, &req); err != nil {
		s.logger.Error("Failed to decode stored story request",
			zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to decode stored request for story %s: %w", storyID, err)
	}

	s.logger.Info("Regenerating story",
		zap.String("storyID", storyID.String()),
		zap.Bool("illustrateCover", illustrateCover),
		zap.Bool("illustrateSegments", illustrateSegments),
	)
	return s.run(ctx, userID, req, illustrateCover, illustrateSegments, original.IsPublic)
}

// run executes pipeline steps shared by Create and Regenerate.
func (s *StoryService) run(ctx context.Context, userID uuid.UUID, req models.StoryRequest, illustrateCover, illustrateSegments, isPublic bool) (*CreateStoryResult, error) {
	logFields := []zap.Field{zap.String("userID", userID.String())}

	// Quota is checked before the text generation call so an exhausted user
	// never spends an attempt against the endpoint.
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.UsageCount >= user.Plan.GenerationLimit() {
		s.logger.Warn("Generation rejected, quota exhausted",
			append(logFields, zap.Int("usageCount", user.UsageCount), zap.String("plan", string(user.Plan)))...)
		return nil, models.ErrQuotaExceeded
	}

	generated, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	var coverURL *string
	if illustrateCover {
		coverURL = s.scheduler.GenerateCover(ctx, generated.Title, generated.Summary, req.Tone)
	}

	inputData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode story request: %w", err)
	}

	story := &models.Story{
		UserID:             userID,
		Title:              generated.Title,
		Summary:            generated.Summary,
		InputData:          inputData,
		Tone:               req.Tone,
		CoverImageURL:      coverURL,
		IllustrateCover:    illustrateCover,
		IllustrateSegments: illustrateSegments,
		IsPublic:           isPublic,
	}
	if err := s.stories.Create(ctx, s.db, story); err != nil {
		return nil, err
	}

	var failed []int
	urls := map[int]string{}
	if illustrateSegments {
		urls, failed = s.scheduler.IllustrateSegments(ctx, generated.Segments)
	}

	rows := make([]models.StorySegment, 0, len(generated.Segments))
	for _, segment := range generated.Segments {
		row := models.StorySegment{
			StoryID:      story.ID,
			SegmentOrder: segment.Order,
			Title:        segment.Title,
			Content:      segment.Content,
		}
		if url, ok := urls[segment.Order]; ok {
			row.ImageURL = &url
		}
		rows = append(rows, row)
	}
	// The story row stays even if the segment batch fails; the pipeline is
	// best effort past the story write.
	if err := s.segments.CreateBatch(ctx, s.db, rows); err != nil {
		return nil, err
	}

	// Charged once per generation, regardless of illustration outcome. Losing
	// the photo-finish race with a concurrent generation is tolerated here:
	// the story is already delivered, the conditional update just refuses to
	// move the counter past the limit for anyone else.
	if err := s.users.ChargeGeneration(ctx, userID); err != nil {
		if errors.Is(err, models.ErrQuotaExceeded) {
			s.logger.Warn("Quota charge found counter at limit after successful generation", logFields...)
		} else {
			s.logger.Error("Failed to charge generation", append(logFields, zap.Error(err))...)
		}
	}

	persisted, err := s.segments.ListByStoryID(ctx, story.ID)
	if err != nil {
		return nil, err
	}

	if failed == nil {
		failed = []int{}
	}
	s.logger.Info("Story pipeline finished",
		append(logFields,
			zap.String("storyID", story.ID.String()),
			zap.Int("segments", len(persisted)),
			zap.Ints("failedImageGenerations", failed))...)

	return &CreateStoryResult{
		Story:                  story,
		Segments:               persisted,
		FailedImageGenerations: failed,
	}, nil
}

// validateStoryRequest checks required fields and the tone enum.
func validateStoryRequest(req models.StoryRequest) error {
	required := map[string]string{
		"birthplace":   req.Birthplace,
		"career":       req.Career,
		"gender":       req.Gender,
		"birth_date":   req.BirthDate,
		"relationship": req.Relationship,
		"dream_regret": req.DreamRegret,
	}
	for field, value := range required {
		if value == "" {
			return fmt.Errorf("%w: %s is required", models.ErrInvalidInput, field)
		}
	}
	if !req.Tone.IsValid() {
		return fmt.Errorf("%w: unsupported tone %q", models.ErrInvalidInput, req.Tone)
	}
	return nil
}

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// clampPage normalizes pagination inputs.
func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// ListPublic returns a page of public stories.
func (s *StoryService) ListPublic(ctx context.Context, filter interfaces.StoryListFilter, viewerID *uuid.UUID) ([]models.StorySummary, int64, error) {
	filter.Page, filter.Limit = clampPage(filter.Page, filter.Limit)
	if filter.Tone != "" && !filter.Tone.IsValid() {
		return nil, 0, fmt.Errorf("%w: unsupported tone %q", models.ErrInvalidInput, filter.Tone)
	}
	return s.stories.ListPublic(ctx, filter, viewerID)
}

// ListOwn returns a page of the user's own stories, public and private.
func (s *StoryService) ListOwn(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Story, int64, error) {
	page, limit = clampPage(page, limit)
	return s.stories.ListByUserID(ctx, userID, page, limit)
}

// ListLiked returns a page of public stories the user has liked.
func (s *StoryService) ListLiked(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.StorySummary, int64, error) {
	page, limit = clampPage(page, limit)
	return s.stories.ListLikedByUser(ctx, userID, page, limit)
}

// Get returns a story with its segments. Private stories are only visible to
// their owner; to everyone else they do not exist. Each successful read bumps
// the views counter.
func (s *StoryService) Get(ctx context.Context, storyID uuid.UUID, viewerID *uuid.UUID) (*models.StorySummary, []models.StorySegment, error) {
	summary, err := s.stories.GetSummary(ctx, storyID, viewerID)
	if err != nil {
		return nil, nil, err
	}
	if !summary.IsPublic && (viewerID == nil || *viewerID != summary.UserID) {
		return nil, nil, models.ErrStoryNotFound
	}

	segments, err := s.segments.ListByStoryID(ctx, storyID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.stories.IncrementViewsCount(ctx, storyID); err != nil {
		s.logger.Warn("Failed to increment views counter", zap.String("storyID", storyID.String()), zap.Error(err))
	} else {
		summary.ViewsCount++
	}
	return summary, segments, nil
}

// SetVisibility toggles a story between public and private.
func (s *StoryService) SetVisibility(ctx context.Context, storyID, userID uuid.UUID, isPublic bool) error {
	return s.stories.UpdateVisibility(ctx, storyID, userID, isPublic)
}

// Delete removes an owned story; segments, likes and comments cascade.
func (s *StoryService) Delete(ctx context.Context, storyID, userID uuid.UUID) error {
	return s.stories.Delete(ctx, storyID, userID)
}
