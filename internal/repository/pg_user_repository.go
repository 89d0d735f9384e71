package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/models"
)

const pgUniqueViolation = "23505"

// Compile-time check
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

type pgUserRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgUserRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

func (r *pgUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
        INSERT INTO users (email, password_hash, nickname, avatar_url, plan)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, usage_count, created_at, updated_at
    `
	logFields := []zap.Field{zap.String("email", user.Email)}
	r.logger.Debug("Creating user", logFields...)

	err := r.db.QueryRow(ctx, query,
		user.Email, user.PasswordHash, user.Nickname, user.AvatarURL, user.Plan,
	).Scan(&user.ID, &user.UsageCount, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			r.logger.Warn("Attempted to create user with existing email", logFields...)
			return models.ErrEmailAlreadyExists
		}
		r.logger.Error("Failed to create user", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create user: %w", err)
	}
	r.logger.Info("User created", append(logFields, zap.String("userID", user.ID.String()))...)
	return nil
}

func (r *pgUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
        SELECT id, email, password_hash, nickname, avatar_url, plan, usage_count, created_at, updated_at
        FROM users
        WHERE email = $1
    `
	user := &models.User{}
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Nickname,
		&user.AvatarURL, &user.Plan, &user.UsageCount, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
        SELECT id, email, password_hash, nickname, avatar_url, plan, usage_count, created_at, updated_at
        FROM users
        WHERE id = $1
    `
	user := &models.User{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Nickname,
		&user.AvatarURL, &user.Plan, &user.UsageCount, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by ID", zap.String("userID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return user, nil
}

// ChargeGeneration performs the quota check and the increment in one
// conditional UPDATE so two concurrent generations cannot both slip past the
// limit by reading a stale counter.
func (r *pgUserRepository) ChargeGeneration(ctx context.Context, userID uuid.UUID) error {
	query := `
        UPDATE users
        SET usage_count = usage_count + 1, updated_at = now()
        WHERE id = $1
          AND usage_count < CASE WHEN plan = 'premium' THEN 50 ELSE 5 END
    `
	logFields := []zap.Field{zap.String("userID", userID.String())}

	commandTag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to charge generation", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to charge generation for user %s: %w", userID, err)
	}
	if commandTag.RowsAffected() == 0 {
		r.logger.Warn("Generation quota exhausted", logFields...)
		return models.ErrQuotaExceeded
	}
	r.logger.Debug("Generation charged", logFields...)
	return nil
}
