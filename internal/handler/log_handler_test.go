package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campuskit/moodle-gateway/internal/models"
	"github.com/campuskit/moodle-gateway/internal/repository"
	"github.com/campuskit/moodle-gateway/internal/service"
)

func setupLogApp(t *testing.T) (*fiber.App, service.AuditService) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ActionLog{}))

	audit := service.NewAuditService(repository.NewActionLogRepository(db), nil, time.Minute, zerolog.Nop())

	app := fiber.New()
	NewLogHandler(audit, zerolog.Nop()).Register(app.Group("/logs"))
	return app, audit
}

func TestLogHandlerListValidatesFilters(t *testing.T) {
	app, _ := setupLogApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/logs?startDate=not-a-date", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/logs?actionType=UNKNOWN_TYPE", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/logs?page=2&limit=5", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLogHandlerExportServesCSVAttachment(t *testing.T) {
	app, audit := setupLogApp(t)
	require.NoError(t, audit.Record(context.Background(), service.AuditEntry{UserID: 1, ActionType: models.ActionLogin}))

	resp, err := app.Test(httptest.NewRequest("GET", "/logs/export", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), ".csv")

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.True(t, strings.HasPrefix(records[0][0], "Log ID"))
	require.Equal(t, models.ActionLogin, records[1][4])
}

func TestLogHandlerStats(t *testing.T) {
	app, audit := setupLogApp(t)
	require.NoError(t, audit.Record(context.Background(), service.AuditEntry{UserID: 1, ActionType: models.ActionLogin}))

	resp, err := app.Test(httptest.NewRequest("GET", "/logs/stats", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
