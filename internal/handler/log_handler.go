package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campuskit/moodle-gateway/internal/dto"
	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/service"
	"github.com/campuskit/moodle-gateway/internal/utils"
)

// LogHandler exposes the audit trail endpoints.
type LogHandler struct {
	audit  service.AuditService
	logger zerolog.Logger
}

// NewLogHandler constructs a log handler.
func NewLogHandler(audit service.AuditService, logger zerolog.Logger) *LogHandler {
	return &LogHandler{
		audit:  audit,
		logger: logger.With().Str("component", "log_handler").Logger(),
	}
}

// Register wires the audit trail routes.
func (h *LogHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/export", h.export)
	router.Get("/stats", h.stats)
}

func (h *LogHandler) list(c *fiber.Ctx) error {
	req, err := buildLogRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.audit.List(withRequestContext(c), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list action logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list action logs")
	}

	return utils.SendSuccess(c, result)
}

func (h *LogHandler) export(c *fiber.Ctx) error {
	req, err := buildLogRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload, err := h.audit.ExportCSV(withRequestContext(c), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to export action logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export action logs")
	}

	fileName := fmt.Sprintf("action-logs-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Send(payload)
}

func (h *LogHandler) stats(c *fiber.Ctx) error {
	result, err := h.audit.Stats(withRequestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to aggregate action logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to aggregate action logs")
	}

	return utils.SendSuccess(c, result)
}

func buildLogRequest(c *fiber.Ctx) (dto.LogListRequest, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return dto.LogListRequest{}, fmt.Errorf("invalid page")
	}
	pageSize, err := parseQueryInt(c, "limit")
	if err != nil {
		return dto.LogListRequest{}, fmt.Errorf("invalid limit")
	}

	req := dto.LogListRequest{Page: page, PageSize: pageSize}

	if value, err := parseQueryInt(c, "userId"); err != nil {
		return dto.LogListRequest{}, fmt.Errorf("invalid userId")
	} else if value > 0 {
		id := uint(value)
		req.UserID = &id
	}

	if value, err := parseQueryInt(c, "courseId"); err != nil {
		return dto.LogListRequest{}, fmt.Errorf("invalid courseId")
	} else if value > 0 {
		id := uint(value)
		req.CourseID = &id
	}

	if actionType := strings.TrimSpace(c.Query("actionType")); actionType != "" {
		if !models.ValidActionType(actionType) {
			return dto.LogListRequest{}, fmt.Errorf("unknown action type %q", actionType)
		}
		req.ActionType = actionType
	}

	if start, err := parseQueryDate(c, "startDate"); err != nil {
		return dto.LogListRequest{}, err
	} else if start != nil {
		req.Start = start
	}

	if end, err := parseQueryDate(c, "endDate"); err != nil {
		return dto.LogListRequest{}, err
	} else if end != nil {
		// Day-granular filters include the whole end day.
		inclusive := end.Add(24*time.Hour - time.Nanosecond)
		req.End = &inclusive
	}

	return req, nil
}

func parseQueryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s, expected YYYY-MM-DD", key)
	}
	return &parsed, nil
}
