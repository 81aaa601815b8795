package middleware

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/service"
)

type captureRecorder struct {
	entries []service.AuditEntry
	err     error
}

func (r *captureRecorder) Record(ctx context.Context, entry service.AuditEntry) error {
	r.entries = append(r.entries, entry)
	return r.err
}

func auditApp(recorder service.AuditRecorder, principal *Principal) *fiber.App {
	app := fiber.New()
	app.Get("/courses/:courseId/content", func(c *fiber.Ctx) error {
		if principal != nil {
			SetPrincipal(c, *principal)
		}
		return c.Next()
	}, Audit(recorder, time.Second, zerolog.Nop(), models.ActionCourseView), func(c *fiber.Ctx) error {
		return c.SendString("content")
	})
	return app
}

func TestAuditRecordsEntry(t *testing.T) {
	recorder := &captureRecorder{}
	app := auditApp(recorder, &Principal{UserID: 7, Role: models.RoleStudent})

	req := httptest.NewRequest("GET", "/courses/42/content?page=2", nil)
	req.Header.Set("User-Agent", "test-agent")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	require.Equal(t, uint(7), entry.UserID)
	require.Equal(t, models.ActionCourseView, entry.ActionType)
	require.NotNil(t, entry.CourseID)
	require.Equal(t, uint(42), *entry.CourseID)
	require.Equal(t, "test-agent", entry.UserAgent)
	require.Equal(t, "/courses/42/content?page=2", entry.Metadata["endpoint"])
}

func TestAuditFailureDoesNotBlockRequest(t *testing.T) {
	recorder := &captureRecorder{err: errors.New("database down")}
	app := auditApp(recorder, &Principal{UserID: 7, Role: models.RoleStudent})

	resp, err := app.Test(httptest.NewRequest("GET", "/courses/42/content", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "content", string(body))
	require.Len(t, recorder.entries, 1)
}

func TestAuditSkipsAnonymousRequests(t *testing.T) {
	recorder := &captureRecorder{}
	app := auditApp(recorder, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/courses/42/content", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Empty(t, recorder.entries)
}
