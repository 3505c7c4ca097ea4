package routes

import (
	"shramik-backend/internal/handler"
	"shramik-backend/internal/middleware"
	"shramik-backend/internal/model"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App, hdl *handler.PaymentHandler, auth fiber.Handler) {
	// Gateway server-to-server notifications carry their own checksum instead of a token
	app.Post("/api/payments/callback/phonepe", hdl.PhonePeCallback)

	employer := middleware.Role(model.RoleEmployer)
	api := app.Group("/api/payments", auth)

	api.Get("/history", hdl.History)
	api.Get("/export", hdl.Export)
	api.Post("/initiate", employer, middleware.Verified, hdl.Initiate)
	api.Get("/:id", hdl.GetAttempt)
	api.Post("/:id/confirm", employer, middleware.Verified, hdl.Confirm)
	api.Post("/:id/cancel", employer, middleware.Verified, hdl.Cancel)
	api.Post("/:id/reconcile", employer, middleware.Verified, hdl.Reconcile)
}
