package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

const loggerKey = "logger"

// RequestLogger attaches a logger carrying the request id. Run it after fiber's requestid
// middleware.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("requestid").(string)
		c.Locals(loggerKey, logger.With("request_id", reqID))
		return c.Next()
	}
}

// Logger returns the request's logger, falling back to the default logger.
func Logger(c *fiber.Ctx) *slog.Logger {
	if l, ok := c.Locals(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
