package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/community/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags every request with an ID and logs one entry once the
// handler chain has finished.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}
		c.Locals(logger.RequestIDKey, requestID)
		c.Set(RequestIDHeader, requestID)

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		details := map[string]interface{}{
			"request_id":  requestID,
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.IP(),
			"response":    logger.GetResponseSizeSummary(c),
		}

		userID := logger.GetUserIDFromContext(c)
		switch {
		case status >= fiber.StatusInternalServerError:
			if userID != nil {
				logger.ErrorWithUser(*userID, "http_request", err, details)
			} else {
				logger.Error("http_request", err, details)
			}
		case userID != nil:
			logger.InfoWithUser(*userID, "http_request", details)
		default:
			logger.Info("http_request", details)
		}
		return err
	}
}

// SecurityLogger records denied and missing resources separately so they
// can be filtered out of the request stream.
func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if fiberErr, ok := err.(*fiber.Error); ok {
			status = fiberErr.Code
		}

		var action string
		switch status {
		case fiber.StatusUnauthorized:
			action = "security_unauthorized"
		case fiber.StatusForbidden:
			action = "security_forbidden"
		case fiber.StatusNotFound:
			action = "security_not_found"
		default:
			return err
		}

		details := map[string]interface{}{
			"request_id": logger.GetRequestID(c),
			"method":     c.Method(),
			"path":       c.Path(),
			"ip":         c.IP(),
		}
		if userID := logger.GetUserIDFromContext(c); userID != nil {
			logger.WarnWithUser(*userID, action, details)
		} else {
			logger.Warn(action, details)
		}
		return err
	}
}
