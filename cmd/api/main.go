package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campuskit/moodle-gateway/internal/config"
	"github.com/campuskit/moodle-gateway/internal/database"
	"github.com/campuskit/moodle-gateway/internal/handler"
	"github.com/campuskit/moodle-gateway/internal/lms"
	"github.com/campuskit/moodle-gateway/internal/middleware"
	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/repository"
	"github.com/campuskit/moodle-gateway/internal/router"
	"github.com/campuskit/moodle-gateway/internal/service"
	"github.com/campuskit/moodle-gateway/pkg/localstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.AccessRestriction{},
		&models.Payment{},
		&models.ActionLog{},
		&models.SubmissionUpload{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	moodle, err := lms.NewClient(lms.Config{
		BaseURL:    cfg.MoodleBaseURL,
		Token:      cfg.MoodleToken,
		RestFormat: cfg.MoodleRestFormat,
		Timeout:    cfg.MoodleTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create moodle client: %v", err)
	}

	fileStore, err := localstore.New(cfg.UploadDir, logger)
	if err != nil {
		log.Fatalf("failed to create upload store: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	restrictionRepo := repository.NewRestrictionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	actionLogRepo := repository.NewActionLogRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	auditService := service.NewAuditService(actionLogRepo, redisClient, cfg.StatsCacheTTL, logger)
	authService := service.NewAuthService(userRepo, restrictionRepo, auditService, validate, cfg.JWTSecret, cfg.JWTExpiry, logger)
	adminUserService := service.NewAdminUserService(userRepo, validate, logger)
	billingService := service.NewBillingService(userRepo, restrictionRepo, paymentRepo, validate, logger)
	uploadService := service.NewUploadService(fileStore, uploadRepo, cfg.MaxUploadBytes, logger)

	courses := lms.NewCourses(moodle)
	assignments := lms.NewAssignments(moodle)
	quizzes := lms.NewQuizzes(moodle)
	grades := lms.NewGrades(moodle)
	discussions := lms.NewDiscussions(moodle)

	audit := func(actionType string) fiber.Handler {
		return middleware.Audit(auditService, cfg.AuditTimeout, logger, actionType)
	}

	authHandler := handler.NewAuthHandler(authService, logger)
	courseHandler := handler.NewCourseHandler(courses, audit, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignments, uploadService, validate, audit, logger)
	quizHandler := handler.NewQuizHandler(quizzes, validate, audit, logger)
	gradeHandler := handler.NewGradeHandler(grades, audit, logger)
	discussionHandler := handler.NewDiscussionHandler(discussions, validate, audit, logger)
	adminHandler := handler.NewAdminHandler(adminUserService, billingService, logger)
	logHandler := handler.NewLogHandler(auditService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		CourseHandler:     courseHandler,
		AssignmentHandler: assignmentHandler,
		QuizHandler:       quizHandler,
		GradeHandler:      gradeHandler,
		DiscussionHandler: discussionHandler,
		AdminHandler:      adminHandler,
		LogHandler:        logHandler,
		Authenticate:      middleware.Authenticate(cfg.JWTSecret, userRepo),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
