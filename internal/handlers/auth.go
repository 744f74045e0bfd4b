package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/community/internal/middleware"
	"github.com/yatube/community/internal/models"
	"github.com/yatube/community/internal/services"
	"github.com/yatube/community/pkg/logger"
	"github.com/yatube/community/pkg/utils"
)

type AuthHandler struct {
	Accounts *services.AccountService
}

func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{Accounts: accounts}
}

type signupRequest struct {
	Username  string `json:"username" form:"username"`
	Password  string `json:"password" form:"password"`
	Email     string `json:"email" form:"email"`
	FirstName string `json:"firstName" form:"firstName"`
	LastName  string `json:"lastName" form:"lastName"`
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.Accounts.Register(c.UserContext(), services.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.ValidationFailed(c, verr.Fields)
	case errors.Is(err, services.ErrConflict):
		return utils.Error(c, fiber.StatusConflict, "username already taken")
	case err != nil:
		logger.Error("signup_failed", err, map[string]interface{}{"ip": c.IP()})
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating user")
	}

	token, err := h.issueSession(c, user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}
	return utils.Success(c, fiber.StatusCreated, fiber.Map{"token": token, "user": user})
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

// LoginForm shows the login page that anonymous visitors are sent to.
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, "login", fiber.Map{"next": safeNext(c.Query("next"))})
}

// Login answers API clients with the envelope. Browser form posts are sent
// on to the page they came from.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	fromForm := isFormPost(c)

	if req.Username == "" || req.Password == "" {
		if fromForm {
			return h.loginFormError(c, req, "username and password are required")
		}
		return utils.Error(c, fiber.StatusBadRequest, "username and password are required")
	}

	user, err := h.Accounts.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			logger.Error("login_failed", err, map[string]interface{}{"ip": c.IP()})
			return utils.Error(c, fiber.StatusInternalServerError, "failed checking credentials")
		}
		logger.Warn("login_failed_invalid_credentials", map[string]interface{}{
			"username": req.Username,
			"ip":       c.IP(),
		})
		if fromForm {
			return h.loginFormError(c, req, "invalid credentials")
		}
		return utils.Error(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	logger.InfoWithUser(user.ID.String(), "user_login", map[string]interface{}{
		"username": user.Username,
		"ip":       c.IP(),
	})

	token, err := h.issueSession(c, user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}
	if fromForm {
		return c.Redirect(safeNext(req.Next), fiber.StatusFound)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"token": token, "user": user})
}

func isFormPost(c *fiber.Ctx) bool {
	contentType := c.Get(fiber.HeaderContentType)
	return strings.HasPrefix(contentType, fiber.MIMEApplicationForm) || strings.HasPrefix(contentType, fiber.MIMEMultipartForm)
}

func (h *AuthHandler) loginFormError(c *fiber.Ctx, req loginRequest, message string) error {
	return render(c, fiber.StatusUnauthorized, "login", fiber.Map{
		"next":     safeNext(req.Next),
		"username": req.Username,
		"error":    message,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return utils.Success(c, fiber.StatusOK, fiber.Map{"loggedOut": true})
}

func (h *AuthHandler) issueSession(c *fiber.Ctx, user *models.User) (string, error) {
	token, err := utils.GenerateToken(user)
	if err != nil {
		return "", err
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(utils.TokenTTL()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return token, nil
}
