package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/moodle-gateway/internal/config"
	"github.com/campuskit/moodle-gateway/internal/handler"
	"github.com/campuskit/moodle-gateway/internal/middleware"
	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	CourseHandler     *handler.CourseHandler
	AssignmentHandler *handler.AssignmentHandler
	QuizHandler       *handler.QuizHandler
	GradeHandler      *handler.GradeHandler
	DiscussionHandler *handler.DiscussionHandler
	AdminHandler      *handler.AdminHandler
	LogHandler        *handler.LogHandler
	Authenticate      fiber.Handler
}

var staffRoles = []string{models.RoleTeacher, models.RoleAdmin, models.RoleSuperAdmin}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	authenticate := deps.Authenticate
	if authenticate == nil {
		authenticate = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Auth: login and registration stay public behind the rate limiter,
	// the profile route requires a token.
	if deps.AuthHandler != nil {
		auth := app.Group("/api/auth", middleware.RateLimit(cfg.RateLimitMax, cfg.RateLimitWindow))
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(auth.Group("", authenticate))
	}

	// Domain proxies: all sit behind the payment gate; staff routes add a
	// role check on top.
	if deps.CourseHandler != nil {
		courses := app.Group("/api/courses", authenticate, middleware.Gate())
		deps.CourseHandler.RegisterStaff(courses.Group("", middleware.Gate(staffRoles...)))
		deps.CourseHandler.Register(courses)
	}

	if deps.AssignmentHandler != nil {
		assignments := app.Group("/api/assignments", authenticate, middleware.Gate())
		deps.AssignmentHandler.RegisterStaff(assignments.Group("", middleware.Gate(staffRoles...)))
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.QuizHandler != nil {
		quizzes := app.Group("/api/quizzes", authenticate, middleware.Gate())
		deps.QuizHandler.Register(quizzes)
	}

	if deps.GradeHandler != nil {
		grades := app.Group("/api/grades", authenticate, middleware.Gate())
		deps.GradeHandler.RegisterStaff(grades.Group("", middleware.Gate(staffRoles...)))
		deps.GradeHandler.Register(grades)
	}

	if deps.DiscussionHandler != nil {
		discussions := app.Group("/api/discussions", authenticate, middleware.Gate())
		deps.DiscussionHandler.RegisterStaff(discussions.Group("", middleware.Gate(staffRoles...)))
		deps.DiscussionHandler.Register(discussions)
	}

	// Administration and the audit trail.
	if deps.AdminHandler != nil {
		admin := app.Group("/api/admin", authenticate, middleware.Gate(models.RoleAdmin, models.RoleSuperAdmin))
		deps.AdminHandler.Register(admin)
	}

	if deps.LogHandler != nil {
		logs := app.Group("/api/logs", authenticate, middleware.Gate(staffRoles...))
		deps.LogHandler.Register(logs)
	}
}
