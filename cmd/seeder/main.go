package main

import (
	"log/slog"
	"os"
	"time"

	"shramik-backend/config"
	"shramik-backend/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	log.Info("starting database seeding")

	// Load .env manually since this is a separate script
	if err := godotenv.Load(); err != nil {
		log.Warn(".env not found, using system environment variables")
	}

	cfg := config.Load()
	db, err := config.ConnectDB(cfg, log)
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}

	if err := database.SeedAll(db, time.Now().In(cfg.Location()), log); err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	log.Info("seeding done", "password", database.DemoPassword)
}
