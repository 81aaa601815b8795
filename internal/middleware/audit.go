package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campuskit/moodle-gateway/internal/observability"
	"github.com/campuskit/moodle-gateway/internal/service"
)

// Audit returns the audit recorder middleware. It appends one action log
// entry before the route handler executes. The write runs under its own
// bounded timeout and any failure is logged and swallowed: losing a log
// entry is acceptable, blocking the primary action is not. At-most-once,
// no retry, no queue.
func Audit(recorder service.AuditRecorder, timeout time.Duration, logger zerolog.Logger, actionType string) fiber.Handler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	auditLogger := logger.With().Str("component", "audit_middleware").Logger()

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromCtx(c)
		if ok {
			metadata := map[string]interface{}{
				"endpoint": c.OriginalURL(),
				"method":   c.Method(),
			}
			if params := c.AllParams(); len(params) > 0 {
				metadata["params"] = params
			}
			if query := c.Queries(); len(query) > 0 {
				metadata["query"] = query
			}

			entry := service.AuditEntry{
				UserID:     principal.UserID,
				ActionType: actionType,
				Metadata:   metadata,
				CourseID:   courseIDFromPath(c),
				IPAddress:  c.IP(),
				UserAgent:  c.Get("User-Agent"),
			}

			ctx, cancel := context.WithTimeout(ContextWithCorrelation(context.Background(), GetCorrelationID(c)), timeout)
			if err := recorder.Record(ctx, entry); err != nil {
				auditLogger.Error().Err(err).
					Uint("user_id", entry.UserID).
					Str("action_type", actionType).
					Msg("failed to record action log")
				observability.AuditDrops().Inc()
			}
			cancel()
		}

		return c.Next()
	}
}

// courseIDFromPath extracts the course id path parameter when present and
// numeric; otherwise the entry carries none.
func courseIDFromPath(c *fiber.Ctx) *uint {
	value := c.Params("courseId")
	if value == "" {
		return nil
	}

	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return nil
	}

	id := uint(parsed)
	return &id
}
