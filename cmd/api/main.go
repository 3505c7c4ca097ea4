package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"shramik-backend/config"
	"shramik-backend/internal/gateway"
	"shramik-backend/internal/handler"
	"shramik-backend/internal/lock"
	"shramik-backend/internal/middleware"
	"shramik-backend/internal/notification"
	"shramik-backend/internal/repository"
	"shramik-backend/internal/routes"
	"shramik-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load .env, system environment variables win when it is missing
	envErr := godotenv.Load()

	cfg := config.Load()
	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)
	if envErr != nil {
		log.Warn(".env not found, using system environment variables")
	}

	// 2. Database
	db, err := config.ConnectDB(cfg, log)
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}

	users := repository.NewUserRepository(db)
	jobs := repository.NewJobRepository(db)
	apps := repository.NewApplicationRepository(db)
	records := repository.NewAttendanceRepository(db)
	payments := repository.NewPaymentRepository(db)
	stats := repository.NewDashboardRepository(db)

	// 3. Supporting services
	locker := newLocker(cfg, log)

	var notifier notification.Notifier = notification.Noop{Logger: log}
	if cfg.SMTP.Enabled() {
		notifier = notification.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	}
	dispatcher := notification.NewDispatcher(notifier, log)

	gateways := []gateway.Gateway{gateway.NewRelayGateway(cfg.RelayURL, cfg.PaymentTimeout)}
	var phonePeCallbacks handler.CallbackVerifier
	if cfg.PhonePe.MerchantID != "" {
		phonePe := gateway.NewPhonePeGateway(gateway.PhonePeConfig{
			MerchantID:  cfg.PhonePe.MerchantID,
			SaltKey:     cfg.PhonePe.SaltKey,
			SaltIndex:   cfg.PhonePe.SaltIndex,
			BaseURL:     cfg.PhonePe.BaseURL,
			RedirectURL: cfg.PhonePe.RedirectURL,
			CallbackURL: cfg.PhonePe.CallbackURL,
		}, cfg.PaymentTimeout)
		gateways = append(gateways, phonePe)
		phonePeCallbacks = phonePe
	}

	// 4. Usecases
	loc := cfg.Location()
	tokens := usecase.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	userUC := usecase.NewUserUsecase(users, tokens, dispatcher, cfg.AppBaseURL, cfg.StoreTimeout, log)
	jobUC := usecase.NewJobUsecase(jobs, cfg.StoreTimeout, log)
	appUC := usecase.NewApplicationUsecase(apps, jobs, users, dispatcher, cfg.StoreTimeout, log)
	attendanceUC := usecase.NewAttendanceUsecase(records, payments, users, jobs, locker, loc, cfg.StoreTimeout, log)
	paymentUC := usecase.NewPaymentUsecase(records, payments, users, locker, dispatcher, usecase.PaymentOptions{
		PaymentTimeout: cfg.PaymentTimeout,
		StoreTimeout:   cfg.StoreTimeout,
		StaleAfter:     cfg.StaleAttemptAfter,
	}, log, gateways...)
	dashboardUC := usecase.NewDashboardUsecase(stats, loc, cfg.StoreTimeout)

	// 5. HTTP server
	app := fiber.New(fiber.Config{
		AppName:      "shramik-api",
		ErrorHandler: handler.ErrorHandler(log),
	})

	// Middleware Global
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(middleware.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "status": "ok"})
	})

	auth := middleware.Auth(tokens)
	routes.SetupAuthRoutes(app, handler.NewAuthHandler(userUC), auth)
	appHandler := handler.NewApplicationHandler(appUC)
	routes.SetupJobRoutes(app, handler.NewJobHandler(jobUC), appHandler, auth)
	routes.SetupApplicationRoutes(app, appHandler, auth)
	routes.SetupAttendanceRoutes(app, handler.NewAttendanceHandler(attendanceUC), auth)
	routes.SetupPaymentRoutes(app, handler.NewPaymentHandler(paymentUC, phonePeCallbacks), auth)
	routes.SetupDashboardRoutes(app, handler.NewDashboardHandler(dashboardUC), auth)

	go func() {
		log.Info("server ready", "port", cfg.AppPort)
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Error("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(cfg.PaymentTimeout + 10*time.Second); err != nil {
		log.Error("shutdown", "error", err)
	}
	dispatcher.Wait()
	if closer, ok := locker.(interface{ Close() error }); ok {
		closer.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// newLocker shares period locks through Redis when configured; a single instance can run with
// the in-process locker.
func newLocker(cfg *config.Config, log *slog.Logger) lock.Locker {
	if cfg.Redis.Addr == "" {
		log.Warn("REDIS_ADDR not set, payment locks are local to this instance")
		return lock.NewMemoryLocker()
	}

	rl := lock.NewRedisLocker(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rl.Ping(ctx); err != nil {
		log.Error("redis unavailable", "addr", cfg.Redis.Addr, "error", err)
		os.Exit(1)
	}
	return rl
}
