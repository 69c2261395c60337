package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ibam/backend/config"
	"ibam/backend/utils"
)

const userIDKey = "user_id"

// AuthMiddleware rejects requests without a valid token and stores the
// caller's id for handlers.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the id stored by AuthMiddleware, or uuid.Nil.
func UserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(userIDKey).(uuid.UUID)
	return id
}
