package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/community/internal/middleware"
	"github.com/yatube/community/internal/services"
	"github.com/yatube/community/internal/views"
	"github.com/yatube/community/pkg/logger"
	"github.com/yatube/community/pkg/utils"
)

// render executes a view with the current user always present in the
// context, the way every page template expects it.
func render(c *fiber.Ctx, status int, view string, bind fiber.Map) error {
	bind["user"] = middleware.GetCurrentUser(c)
	if err := c.Status(status).Render(view, bind); err != nil {
		return err
	}
	if _, ok := c.App().Config().Views.(views.JSONEngine); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	}
	return nil
}

// ErrorHandler renders the 404 page for every missing resource and falls
// back to the JSON envelope for anything else.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code == fiber.StatusNotFound {
		return render(c, fiber.StatusNotFound, "404", fiber.Map{"path": c.Path()})
	}

	if code >= fiber.StatusInternalServerError {
		logger.Error("request_failed", err, map[string]interface{}{
			"request_id": logger.GetRequestID(c),
			"method":     c.Method(),
			"path":       c.Path(),
		})
	}
	return utils.Error(c, code, message)
}

// pageError turns a service error into the response a page should give:
// missing resources become the 404 page and forbidden edits go back to the
// global feed.
func pageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.ErrNotFound
	case errors.Is(err, services.ErrForbidden):
		return c.Redirect("/", fiber.StatusFound)
	case errors.Is(err, services.ErrUnauthenticated):
		return c.Redirect(middleware.LoginRedirectURL(c.OriginalURL()), fiber.StatusFound)
	default:
		return err
	}
}

func actorID(c *fiber.Ctx) string {
	if userID := logger.GetUserIDFromContext(c); userID != nil {
		return *userID
	}
	return "anonymous"
}

// safeNext accepts only local absolute paths as a post-login destination.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}
