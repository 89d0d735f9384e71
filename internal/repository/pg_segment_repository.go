package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/models"
)

// Compile-time check
var _ interfaces.SegmentRepository = (*pgSegmentRepository)(nil)

type pgSegmentRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgSegmentRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.SegmentRepository {
	return &pgSegmentRepository{
		db:     db,
		logger: logger.Named("PgSegmentRepo"),
	}
}

// CreateBatch inserts all segments with one multi-row INSERT. The unique
// (story_id, segment_order) constraint guards against duplicate orders.
func (r *pgSegmentRepository) CreateBatch(ctx context.Context, querier interfaces.DBTX, segments []models.StorySegment) error {
	if len(segments) == 0 {
		return nil
	}

	query := `INSERT INTO story_segments (story_id, segment_order, title, content, image_url) VALUES `
	args := make([]any, 0, len(segments)*5)
	for i, segment := range segments {
		if i > 0 {
			query += ", "
		}
		base := i * 5
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5)
		args = append(args, segment.StoryID, segment.SegmentOrder, segment.Title, segment.Content, segment.ImageURL)
	}

	logFields := []zap.Field{
		zap.String("storyID", segments[0].StoryID.String()),
		zap.Int("count", len(segments)),
	}
	if _, err := querier.Exec(ctx, query, args...); err != nil {
		r.logger.Error("Failed to create story segments", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create story segments: %w", err)
	}
	r.logger.Debug("Story segments created", logFields...)
	return nil
}

func (r *pgSegmentRepository) ListByStoryID(ctx context.Context, storyID uuid.UUID) ([]models.StorySegment, error) {
	query := `
        SELECT id, story_id, segment_order, title, content, image_url, created_at
        FROM story_segments
        WHERE story_id = $1
        ORDER BY segment_order ASC
    `
	var segments []models.StorySegment
	if err := pgxscan.Select(ctx, r.db, &segments, query, storyID); err != nil {
		r.logger.Error("Failed to list story segments", zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list segments for story %s: %w", storyID, err)
	}
	return segments, nil
}

func (r *pgSegmentRepository) AnyIllustrated(ctx context.Context, storyID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM story_segments WHERE story_id = $1 AND image_url IS NOT NULL)`

	var illustrated bool
	if err := r.db.QueryRow(ctx, query, storyID).Scan(&illustrated); err != nil {
		r.logger.Error("Failed to check segment illustrations", zap.String("storyID", storyID.String()), zap.Error(err))
		return false, fmt.Errorf("failed to check illustrations for story %s: %w", storyID, err)
	}
	return illustrated, nil
}
