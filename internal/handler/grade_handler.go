package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campuskit/moodle-gateway/internal/lms"
	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/utils"
)

// GradeHandler proxies grade report endpoints.
type GradeHandler struct {
	grades lms.Grades
	audit  AuditMiddleware
	logger zerolog.Logger
}

// NewGradeHandler constructs a grade handler.
func NewGradeHandler(grades lms.Grades, audit AuditMiddleware, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		grades: grades,
		audit:  audit,
		logger: logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register wires grade routes for authenticated callers.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Get("/course/:courseId/me", h.audit(models.ActionGradeView), h.myGrades)
}

// RegisterStaff wires grade routes restricted to staff roles.
func (h *GradeHandler) RegisterStaff(router fiber.Router) {
	router.Get("/course/:courseId/all", h.courseGrades)
	router.Get("/course/:courseId/items", h.gradeItems)
}

func (h *GradeHandler) myGrades(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	moodleID, ok := moodleUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, msgMoodleUserMissing)
	}

	grades, err := h.grades.UserGrades(withRequestContext(c), courseID, moodleID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, grades)
}

func (h *GradeHandler) courseGrades(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	grades, err := h.grades.CourseGrades(withRequestContext(c), courseID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, grades)
}

func (h *GradeHandler) gradeItems(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	items, err := h.grades.GradeItems(withRequestContext(c), courseID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, items)
}
