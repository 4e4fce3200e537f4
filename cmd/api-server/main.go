package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/httpapi/cache"
	"yamdb/internal/httpapi/handler"
	"yamdb/internal/httpapi/middleware"
	"yamdb/internal/httpapi/repository"
	"yamdb/internal/httpapi/service"
	"yamdb/internal/mail"
)

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func main() {
	// 1️⃣ Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// 2️⃣ Connect to the database
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// 3️⃣ Optional Redis cache for title pages
	titleCache, err := cache.NewTitleCache(cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("could not connect to redis: %v", err)
	}

	mailer := mail.NewSMTPMailer(cfg)

	// 4️⃣ Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// 5️⃣ Services
	authService := service.NewAuthService(userRepo, mailer, logger, cfg)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo, titleCache)
	reviewService := service.NewReviewService(reviewRepo, titleRepo, titleCache)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	// 6️⃣ Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.GET("/check-conn", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "API is alive and database connected ✅",
		})
	})

	apiV1 := r.Group("/api/v1")

	// Open auth endpoints get a per-IP rate limit
	authGroup := apiV1.Group("", middleware.RateLimit(cfg.AuthRatePerSecond, cfg.AuthRateBurst))
	handler.NewAuthHandler(authService).RegisterRoutes(authGroup)

	// Catalog and review routes resolve the bearer token when present so the
	// write handlers behind RequireAuthenticated/RequireAdmin see the caller.
	catalog := apiV1.Group("", middleware.OptionalAuth(authService))
	handler.NewCategoryHandler(categoryService).RegisterRoutes(catalog)
	handler.NewGenreHandler(genreService).RegisterRoutes(catalog)
	handler.NewTitleHandler(titleService).RegisterRoutes(catalog)
	handler.NewReviewHandler(reviewService).RegisterRoutes(catalog)

	authenticated := apiV1.Group("", middleware.AuthMiddleware(authService))
	handler.NewCommentHandler(commentService).RegisterRoutes(authenticated)
	handler.NewUserHandler(userService).RegisterRoutes(authenticated)

	httpServer := fmt.Sprintf("0.0.0.0:%d", cfg.HTTPPort)
	logger.Info("starting api-server", "addr", httpServer, "env", cfg.GoEnv)
	if err := r.Run(httpServer); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
