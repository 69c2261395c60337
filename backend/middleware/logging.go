package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ibam/backend/utils"
)

const requestIDKey = "request_id"

// RequestID propagates X-Request-ID, generating one when the client sent none.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.Locals(requestIDKey, id)
		return c.Next()
	}
}

func LoggingMiddleware(logger *utils.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		kv := []interface{}{
			"request_id", c.Locals(requestIDKey),
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
			"user_agent", c.Get(fiber.HeaderUserAgent),
		}
		switch {
		case err != nil || status >= 500:
			logger.Error("request", append(kv, "error", err)...)
		case status >= 400:
			logger.Warn("request", kv...)
		default:
			logger.Info("request", kv...)
		}
		return err
	}
}
