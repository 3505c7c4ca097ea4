package middleware

import (
	"shramik-backend/internal/model"
	"shramik-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

// Role lets the request through only for the given roles. It must run after Auth.
func Role(allowedRoles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := Identity(c)
		if id == nil {
			return unauthorized(c, "sign in to continue")
		}

		for _, role := range allowedRoles {
			if role == id.Role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "this action is not available for role " + string(id.Role),
			"code":    usecase.ErrWrongRole.Code,
		})
	}
}

// Verified rejects callers whose email is not verified yet.
func Verified(c *fiber.Ctx) error {
	id := Identity(c)
	if id == nil {
		return unauthorized(c, "sign in to continue")
	}
	if !id.EmailVerified {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   usecase.ErrUnverified.Message,
			"code":    usecase.ErrUnverified.Code,
		})
	}
	return c.Next()
}
