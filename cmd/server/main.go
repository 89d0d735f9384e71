package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"parallel-lives-server/internal/ai"
	"parallel-lives-server/internal/config"
	"parallel-lives-server/internal/handler"
	"parallel-lives-server/internal/image"
	"parallel-lives-server/internal/middleware"
	"parallel-lives-server/internal/repository"
	"parallel-lives-server/internal/service"
	"parallel-lives-server/internal/token"
	"parallel-lives-server/migrations"
	"parallel-lives-server/pkg/database"
	"parallel-lives-server/pkg/logger"
	"parallel-lives-server/pkg/migration"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Logger initialized", zap.String("level", cfg.Logger.Level), zap.String("env", cfg.AppEnv))

	ctx := context.Background()

	db, err := database.New(ctx, database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("Connected to PostgreSQL")

	if cfg.Database.MigrateOnStart {
		migrator := migration.NewMigrator(migration.Config{
			MigrationsPath: ".",
			MigrationsFS:   migrations.FS,
		}, db.Pool)
		if err := migrator.Up(ctx); err != nil {
			zapLogger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		// The rate limiter fails open, so a missing Redis only costs limits.
		zapLogger.Warn("Redis unavailable, rate limiting degraded", zap.Error(err))
	} else {
		zapLogger.Info("Connected to Redis")
	}
	cancelPing()
	defer redisClient.Close()

	tokens, err := token.NewManager(cfg.JWT, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize token manager", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(db.Pool, zapLogger)
	storyRepo := repository.NewPgStoryRepository(db.Pool, zapLogger)
	segmentRepo := repository.NewPgSegmentRepository(db.Pool, zapLogger)
	likeRepo := repository.NewPgLikeRepository(db.Pool, zapLogger)
	commentRepo := repository.NewPgCommentRepository(db.Pool, zapLogger)

	aiClient := ai.NewClient(cfg.AI, zapLogger)
	imageClient := image.NewClient(cfg.Image, zapLogger)
	scheduler := image.NewScheduler(imageClient, cfg.Image, zapLogger)

	authService := service.NewAuthService(userRepo, tokens, zapLogger)
	storyService := service.NewStoryService(db.Pool, userRepo, storyRepo, segmentRepo, aiClient, scheduler, zapLogger)
	likeService := service.NewLikeService(likeRepo, storyRepo, zapLogger)
	commentService := service.NewCommentService(commentRepo, storyRepo, zapLogger)

	authHandler := handler.NewAuthHandler(authService, zapLogger)
	storyHandler := handler.NewStoryHandler(storyService, likeService, zapLogger)
	commentHandler := handler.NewCommentHandler(commentService, zapLogger)
	limiter := middleware.NewRateLimiter(redisClient, cfg.RateLimit.Enabled, zapLogger)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.ZapLogging(zapLogger), gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	prom := ginprometheus.NewPrometheus("gin")
	prom.Use(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler.RegisterRoutes(router, *cfg, tokens, limiter, authHandler, storyHandler, commentHandler, zapLogger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Graceful shutdown failed", zap.Error(err))
	}
	zapLogger.Info("Server stopped")
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = origins
	return corsCfg
}
