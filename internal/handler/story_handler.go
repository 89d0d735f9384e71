package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/middleware"
	"parallel-lives-server/internal/models"
	"parallel-lives-server/internal/service"
)

// StoryHandler serves story generation, browsing, likes, visibility and
// deletion.
type StoryHandler struct {
	stories *service.StoryService
	likes   *service.LikeService
	logger  *zap.Logger
}

func NewStoryHandler(stories *service.StoryService, likes *service.LikeService, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{
		stories: stories,
		likes:   likes,
		logger:  logger.Named("StoryHandler"),
	}
}

type generateStoryRequest struct {
	models.StoryRequest
	GenerateImages bool  `json:"generate_images"`
	IsPublic       *bool `json:"is_public"`
}

func (h *StoryHandler) Generate(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIError{ErrorCode: "UNAUTHORIZED", Message: "authentication required"})
		return
	}

	var req generateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{ErrorCode: "VALIDATION_ERROR", Message: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.stories.Create(c.Request.Context(), userID, service.CreateStoryInput{
		Request:        req.StoryRequest,
		GenerateImages: req.GenerateImages,
		IsPublic:       req.IsPublic,
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *StoryHandler) Regenerate(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIError{ErrorCode: "UNAUTHORIZED", Message: "authentication required"})
		return
	}
	storyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.stories.Regenerate(c.Request.Context(), userID, storyID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *StoryHandler) ListPublic(c *gin.Context) {
	page, limit := parsePagination(c)
	filter := interfaces.StoryListFilter{
		Tone:  models.Tone(c.Query("tone")),
		Sort:  interfaces.StorySort(c.DefaultQuery("sort", string(interfaces.SortLatest))),
		Page:  page,
		Limit: limit,
	}
	if rawUserID := c.Query("user_id"); rawUserID != "" {
		authorID, err := uuid.Parse(rawUserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, APIError{ErrorCode: "VALIDATION_ERROR", Message: "invalid user_id parameter"})
			return
		}
		filter.UserID = &authorID
	}

	viewerID := optionalViewer(c)
	stories, total, err := h.stories.ListPublic(c.Request.Context(), filter, viewerID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(c, "stories", stories, total))
}

func (h *StoryHandler) ListOwn(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIError{ErrorCode: "UNAUTHORIZED", Message: "authentication required"})
		return
	}

	page, limit := parsePagination(c)
	stories, total, err := h.stories.ListOwn(c.Request.Context(), userID, page, limit)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(c, "stories", stories, total))
}

func (h *StoryHandler) ListLiked(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIError{ErrorCode: "UNAUTHORIZED", Message: "authentication required"})
		return
	}

	page, limit := parsePagination(c)
	stories, total, err := h.stories.ListLiked(c.Request.Context(), userID, page, limit)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(c, "stories", stories, total))
}

func (h *StoryHandler) Get(c *gin.Context) {
	storyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	story, segments, err := h.stories.Get(c.Request.Context(), storyID, optionalViewer(c))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story, "segments": segments})
}

func (h *StoryHandler) ToggleLike(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIError{ErrorCode: "UNAUTHORIZED", Message: "authentication required"})
		return
	}
	storyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	liked, err := h.likes.Toggle(c.Request.Context(), userID, storyID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

type visibilityRequest struct {
	IsPublic *bool `json:"is_public" binding:"required"`
}

func (h *StoryHandler) SetVisibility(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIError{ErrorCode: "UNAUTHORIZED", Message: "authentication required"})
		return
	}
	storyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{ErrorCode: "VALIDATION_ERROR", Message: "invalid request body: " + err.Error()})
		return
	}

	if err := h.stories.SetVisibility(c.Request.Context(), storyID, userID, *req.IsPublic); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_public": *req.IsPublic})
}

func (h *StoryHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIError{ErrorCode: "UNAUTHORIZED", Message: "authentication required"})
		return
	}
	storyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.stories.Delete(c.Request.Context(), storyID, userID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseIDParam reads and validates the :id path parameter, writing the error
// response itself on failure.
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{ErrorCode: "VALIDATION_ERROR", Message: "invalid id parameter"})
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}

func optionalViewer(c *gin.Context) *uuid.UUID {
	if userID, ok := middleware.UserIDFromContext(c); ok {
		return &userID
	}
	return nil
}

func listResponse(c *gin.Context, key string, items any, total int64) gin.H {
	page, limit := parsePagination(c)
	return gin.H{
		key: items,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	}
}
