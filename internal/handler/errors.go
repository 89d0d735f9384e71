package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parallel-lives-server/internal/ai"
	"parallel-lives-server/internal/models"
)

// APIError is the error body of every failed request.
type APIError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// handleServiceError maps service errors onto HTTP responses. Every response
// carries a machine-readable code and a retryable flag.
func handleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var aiErr *ai.ServiceError
	if errors.As(err, &aiErr) {
		status := http.StatusInternalServerError
		// A missing or rejected key is an operator problem, not a bug.
		if aiErr.Code == ai.CodeAPIKeyMissing || aiErr.Code == ai.CodeInvalidAPIKey {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, APIError{ErrorCode: aiErr.Code, Message: aiErr.Message, Retryable: aiErr.Retryable})
		return
	}

	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrBadRequest):
		c.JSON(http.StatusBadRequest, APIError{ErrorCode: "VALIDATION_ERROR", Message: err.Error()})
	case errors.Is(err, models.ErrCommentTooLong):
		c.JSON(http.StatusBadRequest, APIError{ErrorCode: "VALIDATION_ERROR", Message: err.Error()})
	case errors.Is(err, models.ErrQuotaExceeded):
		c.JSON(http.StatusForbidden, APIError{ErrorCode: "QUOTA_EXCEEDED", Message: err.Error()})
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, APIError{ErrorCode: "INVALID_CREDENTIALS", Message: err.Error()})
	case errors.Is(err, models.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, APIError{ErrorCode: "EMAIL_EXISTS", Message: err.Error()})
	case errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrTokenInvalid),
		errors.Is(err, models.ErrTokenExpired),
		errors.Is(err, models.ErrTokenMalformed):
		c.JSON(http.StatusUnauthorized, APIError{ErrorCode: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, APIError{ErrorCode: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, models.ErrStoryNotFound),
		errors.Is(err, models.ErrCommentNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, APIError{ErrorCode: "NOT_FOUND", Message: err.Error()})
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{ErrorCode: "INTERNAL_ERROR", Message: "internal server error"})
	}
}
