package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan identifies the subscription tier of a user.
// Matches the 'plan' CHECK constraint in the users table.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// GenerationLimit returns how many story generations the plan allows in total.
func (p Plan) GenerationLimit() int {
	if p == PlanPremium {
		return 50
	}
	return 5
}

// User represents a registered user.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // never serialized
	Nickname     string    `db:"nickname" json:"nickname"`
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Plan         Plan      `db:"plan" json:"plan"`
	UsageCount   int       `db:"usage_count" json:"usage_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
