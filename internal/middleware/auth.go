package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"parallel-lives-server/internal/models"
	"parallel-lives-server/internal/token"
)

// Context keys set by the auth middleware.
const (
	ContextUserIDKey = "user_id"
	ContextEmailKey  = "user_email"
)

// Auth requires a valid Bearer token and stores the user identity on the gin
// context.
func Auth(tokens *token.Manager, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		claims, ok := extractClaims(c, tokens, log)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error_code": "UNAUTHORIZED",
				"message":    "authentication required",
				"retryable":  false,
			})
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextEmailKey, claims.Email)
		c.Next()
	}
}

// OptionalAuth stores the user identity when a valid Bearer token is present
// and proceeds anonymously otherwise.
func OptionalAuth(tokens *token.Manager, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		if claims, ok := extractClaims(c, tokens, log); ok {
			c.Set(ContextUserIDKey, claims.UserID)
			c.Set(ContextEmailKey, claims.Email)
		}
		c.Next()
	}
}

func extractClaims(c *gin.Context, tokens *token.Manager, log *zap.Logger) (*models.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, false
	}

	claims, err := tokens.Verify(parts[1])
	if err != nil {
		log.Debug("Token rejected", zap.Error(err))
		return nil, false
	}
	return claims, true
}

// UserIDFromContext reads the authenticated user ID set by Auth/OptionalAuth.
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}
