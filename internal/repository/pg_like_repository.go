package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/models"
)

const pgForeignKeyViolation = "23503"

// Compile-time check
var _ interfaces.LikeRepository = (*pgLikeRepository)(nil)

type pgLikeRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgLikeRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.LikeRepository {
	return &pgLikeRepository{
		db:     db,
		logger: logger.Named("PgLikeRepo"),
	}
}

func (r *pgLikeRepository) AddLike(ctx context.Context, userID, storyID uuid.UUID) error {
	query := `INSERT INTO likes (user_id, story_id) VALUES ($1, $2)`
	logFields := []zap.Field{zap.String("userID", userID.String()), zap.String("storyID", storyID.String())}

	if _, err := r.db.Exec(ctx, query, userID, storyID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return interfaces.ErrLikeAlreadyExists
			case pgForeignKeyViolation:
				return models.ErrStoryNotFound
			}
		}
		r.logger.Error("Failed to add like", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to add like: %w", err)
	}
	r.logger.Debug("Like added", logFields...)
	return nil
}

func (r *pgLikeRepository) RemoveLike(ctx context.Context, userID, storyID uuid.UUID) error {
	query := `DELETE FROM likes WHERE user_id = $1 AND story_id = $2`
	logFields := []zap.Field{zap.String("userID", userID.String()), zap.String("storyID", storyID.String())}

	commandTag, err := r.db.Exec(ctx, query, userID, storyID)
	if err != nil {
		r.logger.Error("Failed to remove like", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to remove like: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return interfaces.ErrLikeNotFound
	}
	r.logger.Debug("Like removed", logFields...)
	return nil
}

func (r *pgLikeRepository) CheckLike(ctx context.Context, userID, storyID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND story_id = $2)`

	var liked bool
	if err := r.db.QueryRow(ctx, query, userID, storyID).Scan(&liked); err != nil {
		r.logger.Error("Failed to check like",
			zap.String("userID", userID.String()), zap.String("storyID", storyID.String()), zap.Error(err))
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return liked, nil
}
