package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campuskit/moodle-gateway/internal/lms"
	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/utils"
)

// CourseHandler proxies course browsing endpoints.
type CourseHandler struct {
	courses lms.Courses
	audit   AuditMiddleware
	logger  zerolog.Logger
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(courses lms.Courses, audit AuditMiddleware, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courses: courses,
		audit:   audit,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register wires course routes for authenticated callers.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("/me", h.audit(models.ActionCourseView), h.myCourses)
	router.Get("/categories/all", h.categories)
	router.Get("/:courseId", h.audit(models.ActionCourseView), h.byID)
	router.Get("/:courseId/content", h.audit(models.ActionCourseView), h.content)
}

// RegisterStaff wires course routes restricted to staff roles.
func (h *CourseHandler) RegisterStaff(router fiber.Router) {
	router.Get("/all", h.all)
	router.Get("/:courseId/users", h.enrolled)
}

func (h *CourseHandler) myCourses(c *fiber.Ctx) error {
	moodleID, ok := moodleUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, msgMoodleUserMissing)
	}

	courses, err := h.courses.UserCourses(withRequestContext(c), moodleID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, courses)
}

func (h *CourseHandler) all(c *fiber.Ctx) error {
	courses, err := h.courses.AllCourses(withRequestContext(c))
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, courses)
}

func (h *CourseHandler) categories(c *fiber.Ctx) error {
	categories, err := h.courses.Categories(withRequestContext(c))
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, categories)
}

func (h *CourseHandler) byID(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.courses.CourseByID(withRequestContext(c), courseID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}
	if course == nil {
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	}

	return utils.SendSuccess(c, course)
}

func (h *CourseHandler) content(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	sections, err := h.courses.CourseContent(withRequestContext(c), courseID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, sections)
}

func (h *CourseHandler) enrolled(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	users, err := h.courses.EnrolledUsers(withRequestContext(c), courseID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, users)
}
