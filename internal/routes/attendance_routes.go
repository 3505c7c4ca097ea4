package routes

import (
	"shramik-backend/internal/handler"
	"shramik-backend/internal/middleware"
	"shramik-backend/internal/model"

	"github.com/gofiber/fiber/v2"
)

func SetupAttendanceRoutes(app *fiber.App, hdl *handler.AttendanceHandler, auth fiber.Handler) {
	employer := middleware.Role(model.RoleEmployer)

	api := app.Group("/api/attendance", auth)

	api.Get("/", hdl.List)
	api.Post("/", employer, middleware.Verified, hdl.LoadOrCreate)
	api.Get("/:id", hdl.Get)
	api.Put("/:id/days", employer, middleware.Verified, hdl.MarkDay)
	api.Patch("/:id/rate", employer, middleware.Verified, hdl.UpdateRate)
}
