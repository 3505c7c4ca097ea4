package main

import (
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"shramik-backend/config"
	"shramik-backend/internal/gateway"
	"shramik-backend/internal/handler"
	"shramik-backend/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

// The relay is the only process that holds the Razorpay key secret. The api reaches Razorpay
// through it.
func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		lvl = slog.LevelInfo
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	if envErr != nil {
		log.Warn(".env not found, using system environment variables")
	}

	if cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "" {
		log.Error("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
		os.Exit(1)
	}

	client := gateway.NewRazorpayClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL, cfg.PaymentTimeout)

	app := fiber.New(fiber.Config{
		AppName:      "shramik-relay",
		ErrorHandler: handler.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(logger.New())

	routes.SetupRelayRoutes(app, handler.NewRelayHandler(client, log))

	go func() {
		log.Info("relay ready", "port", cfg.RelayPort)
		if err := app.Listen(":" + cfg.RelayPort); err != nil {
			log.Error("relay stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("shutdown", "error", err)
	}
}
