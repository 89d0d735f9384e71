package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parallel-lives-server/internal/middleware"
	"parallel-lives-server/internal/service"
)

// CommentHandler serves comment listing, creation and deletion.
type CommentHandler struct {
	comments *service.CommentService
	logger   *zap.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		logger:   logger.Named("CommentHandler"),
	}
}

func (h *CommentHandler) ListByStory(c *gin.Context) {
	storyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	page, limit := parsePagination(c)
	comments, total, err := h.comments.List(c.Request.Context(), storyID, optionalViewer(c), page, limit)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(c, "comments", comments, total))
}

type createCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIError{ErrorCode: "UNAUTHORIZED", Message: "authentication required"})
		return
	}
	storyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{ErrorCode: "VALIDATION_ERROR", Message: "invalid request body: " + err.Error()})
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), userID, storyID, req.Content)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIError{ErrorCode: "UNAUTHORIZED", Message: "authentication required"})
		return
	}
	commentID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), userID, commentID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
