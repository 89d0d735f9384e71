package interfaces

import (
	"context"

	"parallel-lives-server/internal/models"

	"github.com/google/uuid"
)

// UserRepository defines persistence operations for users, including the
// per-user generation quota counter.
type UserRepository interface {
	// CreateUser inserts a new user and fills in the generated ID.
	// Returns models.ErrEmailAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email.
	// Returns models.ErrUserNotFound if no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	// Returns models.ErrUserNotFound if no such user exists.
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// ChargeGeneration atomically increments usage_count by one, but only while
	// the counter is still below the plan limit. Returns models.ErrQuotaExceeded
	// when the conditional update matches no row. This is the only way the
	// counter moves; it is never decremented.
	ChargeGeneration(ctx context.Context, userID uuid.UUID) error
}
