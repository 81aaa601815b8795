package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campuskit/moodle-gateway/internal/dto"
	"github.com/campuskit/moodle-gateway/internal/lms"
	"github.com/campuskit/moodle-gateway/internal/middleware"
	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/service"
	"github.com/campuskit/moodle-gateway/internal/utils"
)

// AssignmentHandler proxies assignment endpoints and handles submission
// file intake.
type AssignmentHandler struct {
	assignments lms.Assignments
	uploads     service.UploadService
	validate    *validator.Validate
	audit       AuditMiddleware
	logger      zerolog.Logger
}

// NewAssignmentHandler constructs an assignment handler.
func NewAssignmentHandler(assignments lms.Assignments, uploads service.UploadService, validate *validator.Validate, audit AuditMiddleware, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		uploads:     uploads,
		validate:    validate,
		audit:       audit,
		logger:      logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register wires assignment routes for authenticated callers.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("/course/:courseId", h.audit(models.ActionAssignmentView), h.byCourse)
	router.Get("/:assignmentId", h.audit(models.ActionAssignmentView), h.byID)
	router.Get("/:assignmentId/submission", h.audit(models.ActionAssignmentView), h.mySubmission)
	router.Post("/:assignmentId/submit", h.audit(models.ActionAssignSubmit), h.submit)
}

// RegisterStaff wires grading routes restricted to staff roles.
func (h *AssignmentHandler) RegisterStaff(router fiber.Router) {
	router.Get("/:assignmentId/submissions", h.submissions)
	router.Get("/:assignmentId/grades", h.grades)
	router.Post("/:assignmentId/grade", h.grade)
}

func (h *AssignmentHandler) byCourse(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignments, err := h.assignments.CourseAssignments(withRequestContext(c), courseID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, assignments)
}

func (h *AssignmentHandler) byID(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.assignments.AssignmentByID(withRequestContext(c), assignmentID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}
	if assignment == nil {
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	}

	return utils.SendSuccess(c, assignment)
}

func (h *AssignmentHandler) mySubmission(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	moodleID, ok := moodleUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, msgMoodleUserMissing)
	}

	submission, err := h.assignments.UserSubmission(withRequestContext(c), assignmentID, moodleID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, submission)
}

// submit accepts multipart form submissions. The "text" field is relayed
// to Moodle as an online-text submission; an optional "file" part is
// validated and stored locally. At least one of the two must be present.
func (h *AssignmentHandler) submit(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if _, ok := moodleUserID(c); !ok {
		return utils.SendError(c, fiber.StatusBadRequest, msgMoodleUserMissing)
	}

	principal, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "Authentication required")
	}

	text := strings.TrimSpace(c.FormValue("text"))
	file, fileErr := c.FormFile("file")
	if fileErr != nil {
		file = nil
	}
	if text == "" && file == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "submission text or file is required")
	}

	ctx := withRequestContext(c)
	response := fiber.Map{}

	if file != nil {
		stored, err := h.uploads.Store(ctx, file, principal.UserID, assignmentID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUploadTooLarge):
				return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
			case errors.Is(err, service.ErrUploadTypeNotAllowed), errors.Is(err, service.ErrUploadScanFailed):
				return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
			default:
				requestLogger(h.logger, c).Error().Err(err).Msg("failed to store submission file")
				return utils.SendError(c, fiber.StatusInternalServerError, "failed to store submission file")
			}
		}
		response["file"] = stored
	}

	if text != "" {
		result, err := h.assignments.SubmitOnlineText(ctx, assignmentID, text)
		if err != nil {
			return sendUpstreamError(c, requestLogger(h.logger, c), err)
		}
		response["moodle"] = result
	}

	return utils.SendSuccessMessage(c, "submission saved", response)
}

func (h *AssignmentHandler) submissions(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.assignments.Submissions(withRequestContext(c), assignmentID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, submissions)
}

func (h *AssignmentHandler) grades(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	grades, err := h.assignments.Grades(withRequestContext(c), assignmentID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, grades)
}

func (h *AssignmentHandler) grade(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.GradeSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.assignments.SaveGrade(withRequestContext(c), assignmentID, req.UserID, req.Grade, req.Feedback)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessMessage(c, "grade saved", result)
}
