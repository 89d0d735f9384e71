package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/models"
)

// storyColumns are the raw columns of the stories table, aliased to s.
const storyColumns = `
    s.id, s.user_id, s.title, s.summary, s.input_data, s.tone, s.cover_image_url,
    s.illustrate_cover, s.illustrate_segments, s.is_public,
    s.likes_count, s.comments_count, s.views_count, s.created_at, s.updated_at
`

// summaryColumns extend storyColumns with the joined author and the per-viewer
// like flag. The viewer parameter placeholder is substituted by each query.
const summaryColumns = storyColumns + `,
    u.nickname AS "author.nickname", u.avatar_url AS "author.avatar_url",
    EXISTS(SELECT 1 FROM likes l WHERE l.story_id = s.id AND l.user_id = %s) AS is_liked
`

// Compile-time check
var _ interfaces.StoryRepository = (*pgStoryRepository)(nil)

type pgStoryRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgStoryRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.StoryRepository {
	return &pgStoryRepository{
		db:     db,
		logger: logger.Named("PgStoryRepo"),
	}
}

func (r *pgStoryRepository) Create(ctx context.Context, querier interfaces.DBTX, story *models.Story) error {
	query := `
        INSERT INTO stories
            (user_id, title, summary, input_data, tone, cover_image_url,
             illustrate_cover, illustrate_segments, is_public)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at
    `
	logFields := []zap.Field{zap.String("userID", story.UserID.String()), zap.String("title", story.Title)}
	r.logger.Debug("Creating story", logFields...)

	err := querier.QueryRow(ctx, query,
		story.UserID, story.Title, story.Summary, story.InputData, story.Tone,
		story.CoverImageURL, story.IllustrateCover, story.IllustrateSegments, story.IsPublic,
	).Scan(&story.ID, &story.CreatedAt, &story.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create story", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create story: %w", err)
	}
	r.logger.Info("Story created", append(logFields, zap.String("storyID", story.ID.String()))...)
	return nil
}

func (r *pgStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	query := `SELECT ` + storyColumns + ` FROM stories s WHERE s.id = $1`

	story := &models.Story{}
	if err := pgxscan.Get(ctx, r.db, story, query, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story by ID", zap.String("storyID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return story, nil
}

func (r *pgStoryRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Story, error) {
	query := `SELECT ` + storyColumns + ` FROM stories s WHERE s.id = $1 AND s.user_id = $2`

	story := &models.Story{}
	if err := pgxscan.Get(ctx, r.db, story, query, id, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story by ID for user",
			zap.String("storyID", id.String()), zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return story, nil
}

func (r *pgStoryRepository) GetSummary(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.StorySummary, error) {
	query := `SELECT ` + fmt.Sprintf(summaryColumns, "$2") + `
        FROM stories s
        JOIN users u ON u.id = s.user_id
        WHERE s.id = $1`

	summary := &models.StorySummary{}
	if err := pgxscan.Get(ctx, r.db, summary, query, id, viewerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story summary", zap.String("storyID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get story summary %s: %w", id, err)
	}
	return summary, nil
}

func (r *pgStoryRepository) ListPublic(ctx context.Context, filter interfaces.StoryListFilter, viewerID *uuid.UUID) ([]models.StorySummary, int64, error) {
	countWhere := `WHERE s.is_public = TRUE`
	countArgs := []any{}
	// The list query reserves $1 for the viewer, so its placeholders run one
	// ahead of the count query's.
	listWhere := `WHERE s.is_public = TRUE`
	listArgs := []any{viewerID}
	if filter.Tone != "" {
		countArgs = append(countArgs, filter.Tone)
		countWhere += fmt.Sprintf(" AND s.tone = $%d", len(countArgs))
		listArgs = append(listArgs, filter.Tone)
		listWhere += fmt.Sprintf(" AND s.tone = $%d", len(listArgs))
	}
	if filter.UserID != nil {
		countArgs = append(countArgs, *filter.UserID)
		countWhere += fmt.Sprintf(" AND s.user_id = $%d", len(countArgs))
		listArgs = append(listArgs, *filter.UserID)
		listWhere += fmt.Sprintf(" AND s.user_id = $%d", len(listArgs))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM stories s ` + countWhere
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		r.logger.Error("Failed to count public stories", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count public stories: %w", err)
	}

	listArgs = append(listArgs, filter.Limit, (filter.Page-1)*filter.Limit)
	query := `SELECT ` + fmt.Sprintf(summaryColumns, "$1") + `
        FROM stories s
        JOIN users u ON u.id = s.user_id
        ` + listWhere + `
        ORDER BY ` + orderClause(filter.Sort) + fmt.Sprintf(`
        LIMIT $%d OFFSET $%d`, len(listArgs)-1, len(listArgs))

	var summaries []models.StorySummary
	if err := pgxscan.Select(ctx, r.db, &summaries, query, listArgs...); err != nil {
		r.logger.Error("Failed to list public stories", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list public stories: %w", err)
	}
	return summaries, total, nil
}

// orderClause maps a sort mode onto a deterministic ORDER BY.
func orderClause(sort interfaces.StorySort) string {
	switch sort {
	case interfaces.SortOldest:
		return "s.created_at ASC, s.id ASC"
	case interfaces.SortPopular:
		return "s.likes_count DESC, s.created_at DESC, s.id DESC"
	default:
		return "s.created_at DESC, s.id DESC"
	}
}

func (r *pgStoryRepository) ListByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Story, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM stories WHERE user_id = $1`, userID).Scan(&total); err != nil {
		r.logger.Error("Failed to count user stories", zap.String("userID", userID.String()), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count stories for user %s: %w", userID, err)
	}

	query := `SELECT ` + storyColumns + `
        FROM stories s
        WHERE s.user_id = $1
        ORDER BY s.created_at DESC, s.id DESC
        LIMIT $2 OFFSET $3`

	var stories []models.Story
	if err := pgxscan.Select(ctx, r.db, &stories, query, userID, limit, (page-1)*limit); err != nil {
		r.logger.Error("Failed to list user stories", zap.String("userID", userID.String()), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list stories for user %s: %w", userID, err)
	}
	return stories, total, nil
}

func (r *pgStoryRepository) ListLikedByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.StorySummary, int64, error) {
	var total int64
	countQuery := `
        SELECT COUNT(*)
        FROM likes l
        JOIN stories s ON s.id = l.story_id
        WHERE l.user_id = $1 AND s.is_public = TRUE`
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		r.logger.Error("Failed to count liked stories", zap.String("userID", userID.String()), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count liked stories for user %s: %w", userID, err)
	}

	query := `SELECT ` + storyColumns + `,
        u.nickname AS "author.nickname", u.avatar_url AS "author.avatar_url",
        TRUE AS is_liked
        FROM likes l
        JOIN stories s ON s.id = l.story_id
        JOIN users u ON u.id = s.user_id
        WHERE l.user_id = $1 AND s.is_public = TRUE
        ORDER BY l.created_at DESC
        LIMIT $2 OFFSET $3`

	var summaries []models.StorySummary
	if err := pgxscan.Select(ctx, r.db, &summaries, query, userID, limit, (page-1)*limit); err != nil {
		r.logger.Error("Failed to list liked stories", zap.String("userID", userID.String()), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list liked stories for user %s: %w", userID, err)
	}
	return summaries, total, nil
}

func (r *pgStoryRepository) IncrementViewsCount(ctx context.Context, id uuid.UUID) error {
	return r.adjustCounter(ctx, id, `UPDATE stories SET views_count = views_count + 1 WHERE id = $1`)
}

func (r *pgStoryRepository) IncrementLikesCount(ctx context.Context, id uuid.UUID) error {
	return r.adjustCounter(ctx, id, `UPDATE stories SET likes_count = likes_count + 1 WHERE id = $1`)
}

func (r *pgStoryRepository) DecrementLikesCount(ctx context.Context, id uuid.UUID) error {
	return r.adjustCounter(ctx, id, `UPDATE stories SET likes_count = GREATEST(likes_count - 1, 0) WHERE id = $1`)
}

func (r *pgStoryRepository) IncrementCommentsCount(ctx context.Context, id uuid.UUID) error {
	return r.adjustCounter(ctx, id, `UPDATE stories SET comments_count = comments_count + 1 WHERE id = $1`)
}

func (r *pgStoryRepository) DecrementCommentsCount(ctx context.Context, id uuid.UUID) error {
	return r.adjustCounter(ctx, id, `UPDATE stories SET comments_count = GREATEST(comments_count - 1, 0) WHERE id = $1`)
}

func (r *pgStoryRepository) adjustCounter(ctx context.Context, id uuid.UUID, query string) error {
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		r.logger.Error("Failed to adjust story counter", zap.String("storyID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to adjust counter for story %s: %w", id, err)
	}
	return nil
}

func (r *pgStoryRepository) UpdateVisibility(ctx context.Context, id, userID uuid.UUID, isPublic bool) error {
	query := `UPDATE stories SET is_public = $1, updated_at = now() WHERE id = $2 AND user_id = $3`
	logFields := []zap.Field{
		zap.String("storyID", id.String()),
		zap.String("userID", userID.String()),
		zap.Bool("isPublic", isPublic),
	}

	commandTag, err := r.db.Exec(ctx, query, isPublic, id, userID)
	if err != nil {
		r.logger.Error("Failed to update story visibility", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to update visibility for story %s: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update visibility of non-existent or unauthorized story", logFields...)
		return models.ErrStoryNotFound
	}
	r.logger.Info("Story visibility updated", logFields...)
	return nil
}

func (r *pgStoryRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM stories WHERE id = $1 AND user_id = $2`
	logFields := []zap.Field{zap.String("storyID", id.String()), zap.String("userID", userID.String())}

	commandTag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete story", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to delete story %s: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent or unauthorized story", logFields...)
		return models.ErrStoryNotFound
	}
	r.logger.Info("Story deleted", logFields...)
	return nil
}
