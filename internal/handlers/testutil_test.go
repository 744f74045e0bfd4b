package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/community/internal/config"
	"github.com/yatube/community/internal/database"
	"github.com/yatube/community/internal/models"
	"github.com/yatube/community/internal/views"
	"github.com/yatube/community/pkg/logger"
	"github.com/yatube/community/pkg/utils"
	"gorm.io/gorm"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.SetOutput(io.Discard)
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := database.Open(config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	app := NewApp(views.NewJSON())
	Register(app, Deps{DB: db, PageSize: 10})

	return &testEnv{app: app, db: db}
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        username + "@testmail.com",
		PasswordHash: hash,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func createTestGroup(t *testing.T, db *gorm.DB, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: "Тестовое сообщество", Slug: slug, Description: "test description"}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed creating test group: %v", err)
	}
	return group
}

// createTestPosts creates n posts one minute apart, oldest first.
func createTestPosts(t *testing.T, db *gorm.DB, author *models.User, group *models.Group, n int) []models.Post {
	t.Helper()
	base := time.Now().UTC().Add(-24 * time.Hour)
	posts := make([]models.Post, 0, n)
	for i := 1; i <= n; i++ {
		post := models.Post{
			Text:     fmt.Sprintf("%d. Заголовок тестовой записи", i),
			PubDate:  base.Add(time.Duration(i) * time.Minute),
			AuthorID: author.ID,
		}
		if group != nil {
			post.GroupID = &group.ID
		}
		if err := db.Omit("Author", "Group").Create(&post).Error; err != nil {
			t.Fatalf("failed creating test post: %v", err)
		}
		posts = append(posts, post)
	}
	return posts
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func performFormRequest(t *testing.T, app *fiber.App, method, path string, form url.Values, headers map[string]string) *http.Response {
	t.Helper()

	requestHeaders := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	return performRequest(t, app, method, path, strings.NewReader(form.Encode()), requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

// decodeView reads a page rendered by the JSON views engine.
func decodeView(t *testing.T, resp *http.Response) (string, map[string]any) {
	t.Helper()
	body := decodeJSONMap(t, resp)
	view, _ := body["view"].(string)
	context, ok := body["context"].(map[string]any)
	if !ok {
		t.Fatalf("expected view context object, got %T", body["context"])
	}
	return view, context
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	assertStatus(t, resp, http.StatusFound)
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func assertView(t *testing.T, resp *http.Response, status int, expected string) map[string]any {
	t.Helper()
	assertStatus(t, resp, status)
	view, context := decodeView(t, resp)
	if view != expected {
		t.Fatalf("expected view %q, got %q", expected, view)
	}
	return context
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}

func postsFrom(t *testing.T, context map[string]any) []map[string]any {
	t.Helper()
	raw, ok := context["posts"].([]any)
	if !ok {
		t.Fatalf("expected posts list in context, got %T", context["posts"])
	}
	posts := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		posts = append(posts, item.(map[string]any))
	}
	return posts
}
