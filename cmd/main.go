package main

import (
	"fmt"
	"os"

	"github.com/classdesk/classdesk-backend/internal/app"
	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/db"
	"github.com/classdesk/classdesk-backend/internal/handlers"
	"github.com/classdesk/classdesk-backend/internal/middleware"
	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/repos"
	"github.com/classdesk/classdesk-backend/internal/server"
	"github.com/classdesk/classdesk-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	cfg := app.LoadConfig(log)

	// Postgres
	postgresService, err := db.NewPostgresService(cfg.PostgresDSN(), log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	topicRepo := repos.NewTopicRepo(thePG, log)
	materialRepo := repos.NewMaterialRepo(thePG, log)
	gradeRepo := repos.NewGradeRecordRepo(thePG, log)
	commentRepo := repos.NewCommentRepo(thePG, log)

	// Authorization pipeline
	log.Info("Setting up authorization pipeline from main...")
	resolver := authz.NewResolver(log, cfg.JWTSecretKey)
	locator := authz.NewLocator(log, courseRepo, gradeRepo, commentRepo)
	evaluator := authz.NewEvaluator(log)

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userService := services.NewUserService(thePG, log, userRepo)
	courseService := services.NewCourseService(thePG, log, courseRepo, userRepo)
	topicService := services.NewTopicService(thePG, log, topicRepo)
	materialService := services.NewMaterialService(thePG, log, materialRepo)
	gradeService := services.NewGradeService(thePG, log, gradeRepo)
	commentService := services.NewCommentService(thePG, log, commentRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	userHandler := handlers.NewUserHandler(log, userService)
	courseHandler := handlers.NewCourseHandler(log, courseService)
	topicHandler := handlers.NewTopicHandler(log, topicService)
	materialHandler := handlers.NewMaterialHandler(log, materialService)
	gradeHandler := handlers.NewGradeHandler(log, gradeService)
	commentHandler := handlers.NewCommentHandler(log, commentService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, resolver, locator, evaluator)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:  authMiddleware,
		AuthHandler:     authHandler,
		UserHandler:     userHandler,
		CourseHandler:   courseHandler,
		TopicHandler:    topicHandler,
		MaterialHandler: materialHandler,
		GradeHandler:    gradeHandler,
		CommentHandler:  commentHandler,
	})

	fmt.Printf("Server listening on %s\n", cfg.HTTPAddr)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.Error("Server failed", "error", err)
	}
}
