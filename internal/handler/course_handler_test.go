package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/moodle-gateway/internal/lms"
	"github.com/campuskit/moodle-gateway/internal/middleware"
	"github.com/campuskit/moodle-gateway/internal/utils"
)

func noopAudit(actionType string) fiber.Handler {
	return func(c *fiber.Ctx) error { return c.Next() }
}

func setupCourseApp(t *testing.T, remote http.HandlerFunc, principal middleware.Principal) *fiber.App {
	t.Helper()
	server := httptest.NewServer(remote)
	t.Cleanup(server.Close)

	client, err := lms.NewClient(lms.Config{BaseURL: server.URL, Token: "ws-token"}, zerolog.Nop())
	require.NoError(t, err)

	app := fiber.New()
	group := app.Group("/courses", func(c *fiber.Ctx) error {
		middleware.SetPrincipal(c, principal)
		return c.Next()
	})
	NewCourseHandler(lms.NewCourses(client), noopAudit, zerolog.Nop()).Register(group)
	return app
}

func TestCourseHandlerMyCoursesRequiresLinkedAccount(t *testing.T) {
	app := setupCourseApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}, middleware.Principal{UserID: 1, Role: "STUDENT"})

	resp, err := app.Test(httptest.NewRequest("GET", "/courses/me", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var payload utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, "Moodle user ID not found", payload.Error)
}

func TestCourseHandlerMyCourses(t *testing.T) {
	moodleID := uint(7)
	app := setupCourseApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":3,"shortname":"ALG","fullname":"Algebra","visible":1}]`))
	}, middleware.Principal{UserID: 1, Role: "STUDENT", MoodleUserID: &moodleID})

	resp, err := app.Test(httptest.NewRequest("GET", "/courses/me", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCourseHandlerUpstreamRejection(t *testing.T) {
	moodleID := uint(7)
	app := setupCourseApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"exception":"moodle_exception","errorcode":"invalidtoken","message":"Invalid token"}`))
	}, middleware.Principal{UserID: 1, Role: "STUDENT", MoodleUserID: &moodleID})

	resp, err := app.Test(httptest.NewRequest("GET", "/courses/me", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var payload utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, "Invalid token", payload.Error)
}
