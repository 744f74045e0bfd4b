package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/community/internal/config"
	"github.com/yatube/community/internal/database"
	"github.com/yatube/community/internal/models"
	"github.com/yatube/community/pkg/logger"
	"github.com/yatube/community/pkg/utils"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("failed opening sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed migrating: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) (*models.User, string) {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x", Role: role}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating user: %v", err)
	}
	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating token: %v", err)
	}
	return user, token
}

func whoAmI(c *fiber.Ctx) error {
	user := GetCurrentUser(c)
	if user == nil {
		return c.SendString("anonymous")
	}
	return c.SendString(user.Username)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("failed reading body: %v", err)
	}
	return buf.String()
}

func TestAuthMiddleware(t *testing.T) {
	utils.ConfigureJWT("middleware-test-secret", 1)
	db := setupDB(t)
	_, userToken := createUser(t, db, "leo", models.UserRoleUser)
	_, adminToken := createUser(t, db, "boss", models.UserRoleAdmin)

	auth := NewAuthMiddleware(db)
	app := fiber.New()
	app.Get("/optional", auth.OptionalAuth, whoAmI)
	app.Get("/page", auth.RequireLogin, whoAmI)
	app.Get("/api", auth.RequireAuth, whoAmI)
	app.Get("/admin", auth.RequireAuth, AdminOnly, whoAmI)

	tests := []struct {
		name       string
		path       string
		header     string
		cookie     string
		wantStatus int
		wantBody   string
		wantLoc    string
	}{
		{"optional anonymous", "/optional", "", "", http.StatusOK, "anonymous", ""},
		{"optional bearer", "/optional", "Bearer " + userToken, "", http.StatusOK, "leo", ""},
		{"optional cookie", "/optional", "", userToken, http.StatusOK, "leo", ""},
		{"optional bad token stays anonymous", "/optional", "Bearer nope", "", http.StatusOK, "anonymous", ""},
		{"page login redirect", "/page?x=1", "", "", http.StatusFound, "", "/auth/login?next=%2Fpage%3Fx%3D1"},
		{"page with cookie", "/page", "", userToken, http.StatusOK, "leo", ""},
		{"api missing credentials", "/api", "", "", http.StatusUnauthorized, "", ""},
		{"api malformed header", "/api", "Token abc", "", http.StatusUnauthorized, "", ""},
		{"admin rejects user", "/admin", "Bearer " + userToken, "", http.StatusForbidden, "", ""},
		{"admin accepts admin", "/admin", "Bearer " + adminToken, "", http.StatusOK, "boss", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if tt.wantLoc != "" && resp.Header.Get("Location") != tt.wantLoc {
				t.Fatalf("expected redirect to %q, got %q", tt.wantLoc, resp.Header.Get("Location"))
			}
			if body := readBody(t, resp); tt.wantBody != "" && body != tt.wantBody {
				t.Fatalf("expected body %q, got %q", tt.wantBody, body)
			}
		})
	}
}

func TestLoginRedirectURL(t *testing.T) {
	if got := LoginRedirectURL("/new"); got != "/auth/login?next=%2Fnew" {
		t.Fatalf("unexpected redirect url %q", got)
	}
}

func captureEntries(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(logger.Init)
	return &buf
}

func decodeEntries(t *testing.T, buf *bytes.Buffer) []logger.LogEntry {
	t.Helper()
	var entries []logger.LogEntry
	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for scanner.Scan() {
		var entry logger.LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestRequestAndSecurityLogger(t *testing.T) {
	buf := captureEntries(t)

	app := fiber.New()
	app.Use(RequestLogger())
	app.Use(SecurityLogger())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.Header.Get(RequestIDHeader) != "req-123" {
		t.Fatalf("expected request id to be echoed, got %q", resp.Header.Get(RequestIDHeader))
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}

	actions := map[string]int{}
	for _, entry := range decodeEntries(t, buf) {
		actions[entry.Action]++
		if entry.Action == "http_request" && entry.Details["path"] == "/ok" && entry.Details["request_id"] != "req-123" {
			t.Fatalf("expected request id in details, got %+v", entry.Details)
		}
	}
	if actions["http_request"] != 2 {
		t.Fatalf("expected 2 request entries, got %d", actions["http_request"])
	}
	if actions["security_not_found"] != 1 {
		t.Fatalf("expected 1 security entry, got %d", actions["security_not_found"])
	}
}
