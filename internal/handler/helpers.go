package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campuskit/moodle-gateway/internal/lms"
	"github.com/campuskit/moodle-gateway/internal/middleware"
	"github.com/campuskit/moodle-gateway/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	if value == "" {
		return 0, fmt.Errorf("%s required", key)
	}
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(parsed), nil
}

func withRequestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// moodleUserID resolves the linked Moodle account for the caller. Routes
// that proxy to Moodle cannot serve accounts that are not linked yet.
func moodleUserID(c *fiber.Ctx) (uint, bool) {
	principal, ok := middleware.PrincipalFromCtx(c)
	if !ok || principal.MoodleUserID == nil {
		return 0, false
	}
	return *principal.MoodleUserID, true
}

const msgMoodleUserMissing = "Moodle user ID not found"

// AuditMiddleware builds a per-route audit recorder for one action type.
type AuditMiddleware func(actionType string) fiber.Handler

// sendUpstreamError maps gateway call failures onto HTTP responses. A
// rejection reported by Moodle keeps its original message so clients see
// what the LMS complained about; transport failures hide the detail.
func sendUpstreamError(c *fiber.Ctx, logger *zerolog.Logger, err error) error {
	var remote *lms.RemoteError
	if errors.As(err, &remote) {
		logger.Warn().
			Str("wsfunction", remote.Function).
			Str("errorcode", remote.ErrorCode).
			Msg("moodle rejected request")
		return utils.SendError(c, fiber.StatusBadGateway, remote.Error())
	}

	var transport *lms.TransportError
	if errors.As(err, &transport) {
		logger.Error().Err(err).Str("wsfunction", transport.Function).Msg("moodle unreachable")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "Moodle server unavailable")
	}

	logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
