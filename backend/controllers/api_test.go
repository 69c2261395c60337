package controllers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ibam/backend/config"
	"ibam/backend/models"
	"ibam/backend/routes"
	"ibam/backend/testutil"
	"ibam/backend/utils"
)

const password = "correct-horse"

type testApp struct {
	app  *fiber.App
	db   *gorm.DB
	cfg  *config.Config
	user models.User
}

func setup(t *testing.T) *testApp {
	t.Helper()
	cur, err := config.LoadCurriculum("")
	require.NoError(t, err)
	cfg := &config.Config{
		JWTSecret:   "testsecret",
		TokenTTL:    time.Hour,
		CORSOrigins: "*",
	}
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "learner@example.com", password)
	return &testApp{
		app:  routes.NewApp(db, cfg, cur, utils.NewNopLogger()),
		db:   db,
		cfg:  cfg,
		user: user,
	}
}

func itoa(n int) string { return strconv.Itoa(n) }

func (ta *testApp) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	return resp, result
}

func (ta *testApp) login(t *testing.T) string {
	t.Helper()
	resp, result := ta.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "learner@example.com",
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	session := result["data"].(map[string]interface{})["session"].(map[string]interface{})
	return session["access_token"].(string)
}

func TestLogin(t *testing.T) {
	ta := setup(t)
	resp, result := ta.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "Learner@Example.com",
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := result["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	assert.Equal(t, ta.user.ID.String(), user["id"])
	session := data["session"].(map[string]interface{})
	assert.NotEmpty(t, session["access_token"])
	assert.NotZero(t, session["expires_at"])
	assert.NotContains(t, data, "token")
	assert.Contains(t, data, "login_time")

	cookie := strings.Join(resp.Header.Values("Set-Cookie"), "; ")
	assert.Contains(t, cookie, utils.AuthCookie+"="+session["access_token"].(string))
	assert.Contains(t, strings.ToLower(cookie), "httponly")
	assert.Contains(t, strings.ToLower(cookie), "samesite=strict")

	var logins int64
	require.NoError(t, ta.db.Model(&models.LoginHistory{}).Where("user_id = ?", ta.user.ID).Count(&logins).Error)
	assert.Equal(t, int64(1), logins)
}

func TestLoginFailures(t *testing.T) {
	ta := setup(t)

	resp, result := ta.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "learner@example.com",
		"password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid login credentials", result["message"])

	resp, _ = ta.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": password,
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, result = ta.do(t, "POST", "/api/auth/login", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	details := result["details"].(map[string]interface{})
	assert.Equal(t, "email", details["email"])
	assert.Equal(t, "required", details["password"])

	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	raw, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, raw.StatusCode)
}

func TestRegister(t *testing.T) {
	ta := setup(t)
	resp, result := ta.do(t, "POST", "/api/auth/register", "", map[string]string{
		"email":     "new@example.com",
		"password":  "longenough",
		"full_name": "New Learner",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, result["data"].(map[string]interface{})["session"])

	resp, _ = ta.do(t, "POST", "/api/auth/register", "", map[string]string{
		"email":    "new@example.com",
		"password": "longenough",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = ta.do(t, "POST", "/api/auth/register", "", map[string]string{
		"email":    "short@example.com",
		"password": "short",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	ta := setup(t)
	resp, _ := ta.do(t, "POST", "/api/auth/logout", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, strings.Join(resp.Header.Values("Set-Cookie"), "; "), utils.AuthCookie+"=")
}

func TestDashboardRequiresUser(t *testing.T) {
	ta := setup(t)
	resp, _ := ta.do(t, "GET", "/api/dashboard", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = ta.do(t, "GET", "/api/dashboard", "garbage", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token := ta.login(t)
	require.NoError(t, ta.db.Where("id = ?", ta.user.ID).Delete(&models.User{}).Error)
	resp, _ = ta.do(t, "GET", "/api/dashboard", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestDashboardFixtureWhenCatalogueEmpty(t *testing.T) {
	ta := setup(t)
	token := ta.login(t)

	resp, result := ta.do(t, "GET", "/api/dashboard", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, "fixture", data["data_source"])
	assert.Len(t, data["module_progress"], 5)
	assert.Len(t, data["recent_activity"], 3)
	assert.Nil(t, data["continue_session"])
}

func TestDashboardLiveFlow(t *testing.T) {
	ta := setup(t)
	cur, err := config.LoadCurriculum("")
	require.NoError(t, err)
	sessions := testutil.SeedCurriculum(t, ta.db, cur)
	token := ta.login(t)

	// Finish all of module 1 through the API, then start module 2.
	for _, s := range sessions[:4] {
		resp, _ := ta.do(t, "PUT", "/api/progress/sessions/"+itoa(s.ID), token, map[string]interface{}{
			"completion_percentage": 100,
			"last_section":          "end",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, _ := ta.do(t, "PUT", "/api/progress/sessions/"+itoa(sessions[4].ID), token, map[string]interface{}{
		"completion_percentage": 40,
		"last_section":          "2",
		"last_subsection":       "2.3",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, result := ta.do(t, "GET", "/api/dashboard", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, "live", data["data_source"])

	modules := data["modules"].([]interface{})
	require.Len(t, modules, 5)
	status := func(i int) string { return modules[i].(map[string]interface{})["status"].(string) }
	assert.Equal(t, "completed", status(0))
	assert.Equal(t, "available", status(1))
	assert.Equal(t, "locked", status(2))

	mp := data["module_progress"].([]interface{})
	assert.Equal(t, float64(100), mp[0].(map[string]interface{})["completion_percentage"])
	assert.Equal(t, float64(0), mp[1].(map[string]interface{})["completion_percentage"])

	activity := data["recent_activity"].([]interface{})
	assert.Len(t, activity, 5)

	cont := data["continue_session"].(map[string]interface{})
	assert.Equal(t, float64(sessions[4].ID), cont["session_id"])
	assert.Equal(t, float64(2), cont["module_id"])
	assert.Equal(t, "2.3", cont["last_subsection"])
}

func TestRecordProgressValidation(t *testing.T) {
	ta := setup(t)
	cur, err := config.LoadCurriculum("")
	require.NoError(t, err)
	sessions := testutil.SeedCurriculum(t, ta.db, cur)
	token := ta.login(t)
	path := "/api/progress/sessions/" + itoa(sessions[0].ID)

	resp, _ := ta.do(t, "PUT", path, "", map[string]interface{}{"completion_percentage": 10})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = ta.do(t, "PUT", path, token, map[string]interface{}{"completion_percentage": 101})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = ta.do(t, "PUT", path, token, map[string]interface{}{"last_section": "1"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = ta.do(t, "PUT", "/api/progress/sessions/abc", token, map[string]interface{}{"completion_percentage": 10})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = ta.do(t, "PUT", "/api/progress/sessions/9999", token, map[string]interface{}{"completion_percentage": 10})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = ta.do(t, "PUT", path, token, map[string]interface{}{"completion_percentage": 0})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProfile(t *testing.T) {
	ta := setup(t)
	token := ta.login(t)

	resp, result := ta.do(t, "GET", "/api/user/profile", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, "learner@example.com", data["email"])
	assert.Nil(t, data["password_hash"])
	assert.Equal(t, float64(1), data["logins"].(map[string]interface{})["count"])
}

func TestCurriculumAndHealth(t *testing.T) {
	ta := setup(t)
	resp, result := ta.do(t, "GET", "/api/curriculum", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	modules := result["data"].(map[string]interface{})["modules"].([]interface{})
	assert.Len(t, modules, 5)

	req := httptest.NewRequest("GET", "/health", nil)
	raw, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, raw.StatusCode)
	assert.NotEmpty(t, raw.Header.Get(fiber.HeaderXRequestID))
}

func TestCookieAuthenticatesDashboard(t *testing.T) {
	ta := setup(t)
	token := ta.login(t)

	req := httptest.NewRequest("GET", "/api/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: utils.AuthCookie, Value: token})
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestModuleDetails(t *testing.T) {
	ta := setup(t)
	cur, err := config.LoadCurriculum("")
	require.NoError(t, err)
	sessions := testutil.SeedCurriculum(t, ta.db, cur)
	now := time.Now().UTC()
	testutil.AddProgress(t, ta.db, ta.user.ID, sessions[0].ID, 100, now)
	testutil.AddProgress(t, ta.db, ta.user.ID, sessions[1].ID, 50, now)
	token := ta.login(t)

	resp, _ := ta.do(t, "GET", "/api/modules/1", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, result := ta.do(t, "GET", "/api/modules/1", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, "in-progress", data["status"])
	assert.Equal(t, "Foundational Principles", data["module"].(map[string]interface{})["title"])
	assert.Equal(t, float64(25), data["progress"].(map[string]interface{})["completion_percentage"])

	list := data["sessions"].([]interface{})
	require.Len(t, list, 4)
	first := list[0].(map[string]interface{})
	assert.Equal(t, float64(1), first["session_number"])
	assert.Equal(t, true, first["completed"])
	second := list[1].(map[string]interface{})
	assert.Equal(t, float64(50), second["completion_percentage"])
	assert.Equal(t, false, second["completed"])

	resp, result = ta.do(t, "GET", "/api/modules/2", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "locked", result["data"].(map[string]interface{})["status"])

	resp, _ = ta.do(t, "GET", "/api/modules/99", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = ta.do(t, "GET", "/api/modules/abc", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	ta := setup(t)
	ta.app.Get("/test/panic", func(c *fiber.Ctx) error {
		panic("pq: password authentication failed for user postgres")
	})
	ta.app.Get("/test/error", func(c *fiber.Ctx) error {
		return errors.New("dial tcp 10.0.0.5:5432: connection refused")
	})

	for _, path := range []string{"/test/panic", "/test/error"} {
		req := httptest.NewRequest("GET", path, nil)
		resp, err := ta.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode, path)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "password", path)
		assert.NotContains(t, string(raw), "10.0.0.5", path)
		assert.Contains(t, string(raw), "Internal server error", path)
	}

	resp, result := ta.do(t, "GET", "/api/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Cannot GET /api/nope", result["message"])
}
