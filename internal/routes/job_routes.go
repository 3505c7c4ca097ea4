package routes

import (
	"shramik-backend/internal/handler"
	"shramik-backend/internal/middleware"
	"shramik-backend/internal/model"

	"github.com/gofiber/fiber/v2"
)

func SetupJobRoutes(app *fiber.App, jobs *handler.JobHandler, apps *handler.ApplicationHandler, auth fiber.Handler) {
	employer := middleware.Role(model.RoleEmployer)
	worker := middleware.Role(model.RoleWorker)

	api := app.Group("/api/jobs", auth)

	api.Get("/", jobs.ListOpen)
	api.Get("/mine", employer, jobs.ListMine)
	api.Post("/", employer, middleware.Verified, jobs.Create)
	api.Get("/:id", jobs.Get)
	api.Patch("/:id/close", employer, jobs.Close)

	api.Post("/:id/apply", worker, middleware.Verified, apps.Apply)
	api.Get("/:id/applications", employer, apps.ListForJob)
}

func SetupApplicationRoutes(app *fiber.App, hdl *handler.ApplicationHandler, auth fiber.Handler) {
	api := app.Group("/api/applications", auth)

	api.Get("/mine", middleware.Role(model.RoleWorker), hdl.ListMine)
	api.Patch("/:id/decision", middleware.Role(model.RoleEmployer), hdl.Decide)
	api.Patch("/:id/leave", middleware.Role(model.RoleWorker), hdl.Leave)
}
