package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/yatube/community/internal/models"
	"github.com/yatube/community/pkg/logger"
	"github.com/yatube/community/pkg/utils"
	"gorm.io/gorm"
)

const (
	currentUserKey = "currentUser"

	// TokenCookie carries the session token for browser clients.
	TokenCookie = "token"

	LoginPath = "/auth/login"
)

type AuthMiddleware struct {
	DB *gorm.DB
}

func NewAuthMiddleware(db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{DB: db}
}

func CORS(frontendURL string) fiber.Handler {
	origins := "http://localhost:3000,http://127.0.0.1:3000"
	if frontendURL != "" {
		origins = frontendURL
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowCredentials: true,
	})
}

// tokenFromRequest prefers the Authorization header and falls back to the
// session cookie. ok is false when a header is present but malformed.
func tokenFromRequest(c *fiber.Ctx) (token string, ok bool) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == authHeader || token == "" {
			return "", false
		}
		return token, true
	}
	return c.Cookies(TokenCookie), true
}

func (a *AuthMiddleware) authenticate(c *fiber.Ctx) (*models.User, string) {
	token, ok := tokenFromRequest(c)
	if !ok {
		return nil, "invalid authorization format"
	}
	if token == "" {
		return nil, "missing credentials"
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		logger.Warn("jwt_validation_failed", map[string]interface{}{
			"ip":    c.IP(),
			"path":  c.Path(),
			"error": err.Error(),
		})
		return nil, "invalid or expired token"
	}

	var user models.User
	if err := a.DB.WithContext(c.UserContext()).First(&user, "id = ?", claims.UserID).Error; err != nil {
		logger.Warn("jwt_user_not_found", map[string]interface{}{
			"ip":      c.IP(),
			"path":    c.Path(),
			"user_id": claims.UserID.String(),
		})
		return nil, "user not found"
	}
	return &user, ""
}

func setCurrentUser(c *fiber.Ctx, user *models.User) {
	c.Locals(currentUserKey, user)
	c.Locals(logger.UserIDKey, user.ID.String())
}

// OptionalAuth attaches the user when valid credentials are present and
// otherwise continues anonymously.
func (a *AuthMiddleware) OptionalAuth(c *fiber.Ctx) error {
	if user, _ := a.authenticate(c); user != nil {
		setCurrentUser(c, user)
	}
	return c.Next()
}

// RequireAuth rejects anonymous API calls with a JSON 401.
func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	user, reason := a.authenticate(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, reason)
	}
	setCurrentUser(c, user)
	return c.Next()
}

// RequireLogin sends anonymous page visitors to the login page and brings
// them back afterwards.
func (a *AuthMiddleware) RequireLogin(c *fiber.Ctx) error {
	user, _ := a.authenticate(c)
	if user == nil {
		return c.Redirect(LoginRedirectURL(c.OriginalURL()), fiber.StatusFound)
	}
	setCurrentUser(c, user)
	return c.Next()
}

func LoginRedirectURL(next string) string {
	return LoginPath + "?next=" + url.QueryEscape(next)
}

func AdminOnly(c *fiber.Ctx) error {
	user := GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if user.Role != models.UserRoleAdmin {
		return utils.Error(c, fiber.StatusForbidden, "admin access required")
	}
	return c.Next()
}

func GetCurrentUser(c *fiber.Ctx) *models.User {
	value := c.Locals(currentUserKey)
	if value == nil {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
