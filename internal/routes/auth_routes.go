package routes

import (
	"shramik-backend/internal/handler"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, hdl *handler.AuthHandler, auth fiber.Handler) {
	api := app.Group("/api/auth")

	api.Post("/register", hdl.Register)
	api.Post("/login", hdl.Login)
	api.Get("/verify-email", hdl.VerifyEmail)

	api.Post("/refresh", auth, hdl.RefreshToken)
	api.Post("/request-verification", auth, hdl.RequestVerification)
	api.Get("/profile", auth, hdl.GetProfile)
	api.Put("/profile", auth, hdl.UpdateProfile)
	api.Put("/password", auth, hdl.ChangePassword)
}
