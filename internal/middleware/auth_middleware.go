package middleware

import (
	"strings"

	"shramik-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// Auth validates the bearer token and stores the caller in the request context.
func Auth(tokens *usecase.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Take the token from the Authorization header
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "missing bearer token")
		}

		// Format: "Bearer <token>"
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		// 2. Parse and validate
		id, err := tokens.Parse(tokenString)
		if err != nil {
			return unauthorized(c, err.Error())
		}

		// 3. Keep the caller for handlers; user_id and role stay available as plain locals
		c.Locals(identityKey, id)
		c.Locals("user_id", id.UserID)
		c.Locals("role", string(id.Role))

		return c.Next()
	}
}

// Identity returns the caller set by Auth, or nil on public routes.
func Identity(c *fiber.Ctx) *usecase.Identity {
	id, _ := c.Locals(identityKey).(*usecase.Identity)
	return id
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   msg,
		"code":    usecase.ErrUnauthenticated.Code,
	})
}
