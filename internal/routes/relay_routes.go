package routes

import (
	"shramik-backend/internal/handler"

	"github.com/gofiber/fiber/v2"
)

// SetupRelayRoutes mounts the relay's wire contract at the root, as the api's RelayGateway expects.
func SetupRelayRoutes(app *fiber.App, hdl *handler.RelayHandler) {
	app.Get("/health", hdl.Health)
	app.Post("/create-order", hdl.CreateOrder)
	app.Post("/verify-payment", hdl.VerifyPayment)
	app.Get("/order-status/:id", hdl.OrderStatus)
}
