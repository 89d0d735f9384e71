package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parallel-lives-server/internal/config"
	"parallel-lives-server/internal/middleware"
	"parallel-lives-server/internal/token"
)

// RegisterRoutes mounts the full API surface under cfg.BasePath.
func RegisterRoutes(
	router *gin.Engine,
	cfg config.Config,
	tokens *token.Manager,
	limiter *middleware.RateLimiter,
	auth *AuthHandler,
	stories *StoryHandler,
	comments *CommentHandler,
	logger *zap.Logger,
) {
	requireAuth := middleware.Auth(tokens, logger)
	optionalAuth := middleware.OptionalAuth(tokens, logger)
	authLimit := limiter.Limit("auth", cfg.RateLimit.AuthMax, cfg.RateLimit.AuthWindow)
	generateLimit := limiter.Limit("generate", cfg.RateLimit.GenerateMax, cfg.RateLimit.GenerateWindow)

	api := router.Group(cfg.Server.BasePath)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authLimit, auth.Register)
		authGroup.POST("/login", authLimit, auth.Login)
		authGroup.GET("/me", requireAuth, auth.Me)
	}

	storyGroup := api.Group("/stories")
	{
		storyGroup.POST("/generate", requireAuth, generateLimit, stories.Generate)
		storyGroup.GET("", optionalAuth, stories.ListPublic)
		storyGroup.GET("/user/me", requireAuth, stories.ListOwn)
		storyGroup.GET("/liked", requireAuth, stories.ListLiked)
		storyGroup.GET("/:id", optionalAuth, stories.Get)
		storyGroup.POST("/:id/like", requireAuth, stories.ToggleLike)
		storyGroup.PATCH("/:id/visibility", requireAuth, stories.SetVisibility)
		storyGroup.POST("/:id/regenerate", requireAuth, generateLimit, stories.Regenerate)
		storyGroup.DELETE("/:id", requireAuth, stories.Delete)
	}

	commentGroup := api.Group("/comments")
	{
		commentGroup.GET("/story/:id", optionalAuth, comments.ListByStory)
		commentGroup.POST("/story/:id", requireAuth, comments.Create)
		commentGroup.DELETE("/:id", requireAuth, comments.Delete)
	}
}
