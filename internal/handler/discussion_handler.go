package handler

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/campuskit/moodle-gateway/internal/dto"
	"github.com/campuskit/moodle-gateway/internal/lms"
	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/utils"
)

// DiscussionHandler proxies forum endpoints. User-supplied subjects and
// message bodies are sanitized before they reach the LMS.
type DiscussionHandler struct {
	discussions lms.Discussions
	validate    *validator.Validate
	policy      *bluemonday.Policy
	audit       AuditMiddleware
	logger      zerolog.Logger
}

// NewDiscussionHandler constructs a discussion handler.
func NewDiscussionHandler(discussions lms.Discussions, validate *validator.Validate, audit AuditMiddleware, logger zerolog.Logger) *DiscussionHandler {
	return &DiscussionHandler{
		discussions: discussions,
		validate:    validate,
		policy:      bluemonday.UGCPolicy(),
		audit:       audit,
		logger:      logger.With().Str("component", "discussion_handler").Logger(),
	}
}

// Register wires forum routes for authenticated callers.
func (h *DiscussionHandler) Register(router fiber.Router) {
	router.Get("/course/:courseId/forums", h.audit(models.ActionDiscussionView), h.courseForums)
	router.Get("/forum/:forumId", h.audit(models.ActionDiscussionView), h.forumDiscussions)
	router.Post("/forum/:forumId", h.audit(models.ActionDiscussionPost), h.createDiscussion)
	router.Get("/:discussionId/posts", h.audit(models.ActionDiscussionView), h.posts)
	router.Post("/post/:postId/reply", h.audit(models.ActionDiscussionPost), h.reply)
	router.Put("/post/:postId", h.updatePost)
	router.Delete("/post/:postId", h.deletePost)
}

// RegisterStaff wires moderation routes restricted to staff roles.
func (h *DiscussionHandler) RegisterStaff(router fiber.Router) {
	router.Put("/:discussionId/lock", h.lock)
	router.Put("/:discussionId/pin", h.pin)
}

func (h *DiscussionHandler) courseForums(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	forums, err := h.discussions.CourseForums(withRequestContext(c), courseID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, forums)
}

func (h *DiscussionHandler) forumDiscussions(c *fiber.Ctx) error {
	forumID, err := parseUintParam(c, "forumId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	sortOrder := strings.TrimSpace(c.Query("sort"))

	discussions, err := h.discussions.ForumDiscussions(withRequestContext(c), forumID, sortOrder, page)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, discussions)
}

func (h *DiscussionHandler) createDiscussion(c *fiber.Ctx) error {
	forumID, err := parseUintParam(c, "forumId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.CreateDiscussionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	subject := h.policy.Sanitize(req.Subject)
	message := h.policy.Sanitize(req.Message)

	result, err := h.discussions.AddDiscussion(withRequestContext(c), forumID, subject, message, req.GroupID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendCreated(c, "discussion created", result)
}

func (h *DiscussionHandler) posts(c *fiber.Ctx) error {
	discussionID, err := parseUintParam(c, "discussionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	posts, err := h.discussions.DiscussionPosts(withRequestContext(c), discussionID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, posts)
}

func (h *DiscussionHandler) reply(c *fiber.Ctx) error {
	postID, err := parseUintParam(c, "postId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.discussions.AddPost(withRequestContext(c), postID, h.policy.Sanitize(req.Subject), h.policy.Sanitize(req.Message))
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendCreated(c, "reply created", result)
}

func (h *DiscussionHandler) updatePost(c *fiber.Ctx) error {
	postID, err := parseUintParam(c, "postId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.discussions.UpdatePost(withRequestContext(c), postID, h.policy.Sanitize(req.Subject), h.policy.Sanitize(req.Message))
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessMessage(c, "post updated", result)
}

func (h *DiscussionHandler) deletePost(c *fiber.Ctx) error {
	postID, err := parseUintParam(c, "postId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.discussions.DeletePost(withRequestContext(c), postID)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessMessage(c, "post deleted", result)
}

func (h *DiscussionHandler) lock(c *fiber.Ctx) error {
	discussionID, err := parseUintParam(c, "discussionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.LockDiscussionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.discussions.SetLockState(withRequestContext(c), req.ForumID, discussionID, *req.Lock)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessMessage(c, "lock state updated", result)
}

func (h *DiscussionHandler) pin(c *fiber.Ctx) error {
	discussionID, err := parseUintParam(c, "discussionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.PinDiscussionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.discussions.SetPinState(withRequestContext(c), discussionID, *req.Pin)
	if err != nil {
		return sendUpstreamError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessMessage(c, "pin state updated", result)
}
