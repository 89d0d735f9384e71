package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/models"
)

// Compile-time check
var _ interfaces.CommentRepository = (*pgCommentRepository)(nil)

type pgCommentRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgCommentRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.CommentRepository {
	return &pgCommentRepository{
		db:     db,
		logger: logger.Named("PgCommentRepo"),
	}
}

func (r *pgCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
        INSERT INTO comments (user_id, story_id, content)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `
	logFields := []zap.Field{
		zap.String("userID", comment.UserID.String()),
		zap.String("storyID", comment.StoryID.String()),
	}

	err := r.db.QueryRow(ctx, query, comment.UserID, comment.StoryID, comment.Content).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return models.ErrStoryNotFound
		}
		r.logger.Error("Failed to create comment", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create comment: %w", err)
	}
	r.logger.Debug("Comment created", append(logFields, zap.String("commentID", comment.ID.String()))...)
	return nil
}

func (r *pgCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	query := `
        SELECT c.id, c.user_id, c.story_id, c.content, c.created_at,
               u.nickname AS "author.nickname", u.avatar_url AS "author.avatar_url"
        FROM comments c
        JOIN users u ON u.id = c.user_id
        WHERE c.id = $1
    `
	comment := &models.Comment{}
	if err := pgxscan.Get(ctx, r.db, comment, query, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrCommentNotFound
		}
		r.logger.Error("Failed to get comment", zap.String("commentID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get comment %s: %w", id, err)
	}
	return comment, nil
}

func (r *pgCommentRepository) ListByStoryID(ctx context.Context, storyID uuid.UUID, page, limit int) ([]models.Comment, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE story_id = $1`, storyID).Scan(&total); err != nil {
		r.logger.Error("Failed to count comments", zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count comments for story %s: %w", storyID, err)
	}

	query := `
        SELECT c.id, c.user_id, c.story_id, c.content, c.created_at,
               u.nickname AS "author.nickname", u.avatar_url AS "author.avatar_url"
        FROM comments c
        JOIN users u ON u.id = c.user_id
        WHERE c.story_id = $1
        ORDER BY c.created_at DESC, c.id DESC
        LIMIT $2 OFFSET $3
    `
	var comments []models.Comment
	if err := pgxscan.Select(ctx, r.db, &comments, query, storyID, limit, (page-1)*limit); err != nil {
		r.logger.Error("Failed to list comments", zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list comments for story %s: %w", storyID, err)
	}
	return comments, total, nil
}

func (r *pgCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM comments WHERE id = $1`

	commandTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete comment", zap.String("commentID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete comment %s: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrCommentNotFound
	}
	r.logger.Debug("Comment deleted", zap.String("commentID", id.String()))
	return nil
}
