package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskguardian/internal/auth"
	"taskguardian/pkg/logger"
)

// RequireSession rejects requests without a valid bearer token and puts
// the decoded identity into the request locals for the handlers.
func RequireSession(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "No token provided"})
		}
		session, err := tokens.Parse(header)
		if err != nil {
			logger.SecurityLogger.Warn("Rejected session token",
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
		}
		c.Locals("userID", session.UserID)
		c.Locals("role", string(session.Role))
		return c.Next()
	}
}
