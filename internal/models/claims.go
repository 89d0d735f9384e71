package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the JWT payload for an authenticated user.
type Claims struct {
	UserID               uuid.UUID `json:"user_id"`
	Email                string    `json:"email"`
	jwt.RegisteredClaims           // Issuer, Subject, ExpiresAt, IssuedAt, ...
}
