package utils

import "github.com/gofiber/fiber/v2"

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// ValidationFailed reports per-field errors alongside the usual envelope.
func ValidationFailed(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"success": false,
		"error":   "validation failed",
		"fields":  fields,
	})
}

func Paginated(c *fiber.Ctx, data interface{}, page Page) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"data":       data,
		"pagination": page,
	})
}
