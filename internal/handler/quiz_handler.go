package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campuskit/moodle-gateway/internal/dto"
	"github.com/campuskit/moodle-gateway/internal/lms"
	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/utils"
)

// QuizHandler proxies quiz endpoints.
type QuizHandler struct {
	quizzes  lms.Quizzes
	validate *validator.Validate
	audit    AuditMiddleware
	logger   zerolog.Logger
}

// NewQuizHandler constructs a quiz handler.
func NewQuizHandler(quizzes lms.Quizzes, validate *validator.Validate, audit AuditMiddleware, logger zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizzes:  quizzes,
		validate: validate,
		audit:    audit,
		logger:   logger.With().Str("component", "quiz_handler").Logger(),
	}
}

// Register wires quiz routes for authenticated callers.
func (h *QuizHandler) Register(router fiber.Router) {
	router.Get("/course/:courseId", h.audit(models.ActionQuizView), h.byCourse)
	router.Get("/attempt/:attemptId", h.audit(models.ActionQuizView), h.attemptData)
	router.Post("/attempt/:attemptId/process", h.audit(models.ActionQuizSubmit), h.processAttempt)
	router.Get("/attempt/:attemptId/review", h.audit(models.ActionQuizView), h.attemptReview)
	router.Get("/:quizId", h.audit(models.ActionQuizView), h.byID)
	router.Get("/:quizId/attempts", h.audit(models.ActionQuizView), h.myAttempts)
	router.Get("/:quizId/grade", h.audit(models.ActionQuizView), h.myBestGrade)
	router.Get("/:quizId/feedback", h.feedback)
	router.Post("/:quizId/attempt/start", h.audit(models.ActionQuizAttempt), h.startAttempt)
}

func (h *QuizHandler) byCourse(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	quizzes, err := h.quizzes.CourseQuizzes(withRequestContext(c), courseID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, quizzes)
}

func (h *QuizHandler) byID(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "quizId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	quiz, err := h.quizzes.QuizByID(withRequestContext(c), quizID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}
	if quiz == nil {
		return utils.SendError(c, fiber.StatusNotFound, "quiz not found")
	}

	return utils.SendSuccess(c, quiz)
}

func (h *QuizHandler) myAttempts(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "quizId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	moodleID, ok := moodleUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, msgMoodleUserMissing)
	}

	attempts, err := h.quizzes.UserAttempts(withRequestContext(c), quizID, moodleID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, attempts)
}

func (h *QuizHandler) myBestGrade(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "quizId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	moodleID, ok := moodleUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, msgMoodleUserMissing)
	}

	grade, err := h.quizzes.UserBestGrade(withRequestContext(c), quizID, moodleID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, grade)
}

func (h *QuizHandler) feedback(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "quizId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	grade := c.QueryFloat("grade")

	feedback, err := h.quizzes.FeedbackForGrade(withRequestContext(c), quizID, grade)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, feedback)
}

func (h *QuizHandler) startAttempt(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "quizId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.StartAttemptRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	attempt, err := h.quizzes.StartAttempt(withRequestContext(c), quizID, req.ForceNew)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessMessage(c, "attempt started", attempt)
}

func (h *QuizHandler) attemptData(c *fiber.Ctx) error {
	attemptID, err := parseUintParam(c, "attemptId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}

	data, err := h.quizzes.AttemptData(withRequestContext(c), attemptID, page)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, data)
}

func (h *QuizHandler) processAttempt(c *fiber.Ctx) error {
	attemptID, err := parseUintParam(c, "attemptId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.ProcessAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.quizzes.ProcessAttempt(withRequestContext(c), attemptID, req.Data, req.Finish)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessMessage(c, "attempt processed", result)
}

func (h *QuizHandler) attemptReview(c *fiber.Ctx) error {
	attemptID, err := parseUintParam(c, "attemptId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	review, err := h.quizzes.AttemptReview(withRequestContext(c), attemptID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, review)
}
