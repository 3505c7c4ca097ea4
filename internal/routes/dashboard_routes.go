package routes

import (
	"shramik-backend/internal/handler"
	"shramik-backend/internal/middleware"
	"shramik-backend/internal/model"

	"github.com/gofiber/fiber/v2"
)

func SetupDashboardRoutes(app *fiber.App, hdl *handler.DashboardHandler, auth fiber.Handler) {
	api := app.Group("/api/dashboard", auth, middleware.Role(model.RoleEmployer))
	api.Get("/", hdl.GetStats)
}
