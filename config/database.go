package config

import (
	"fmt"
	"log/slog"

	"shramik-backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// ConnectDB opens the MySQL connection and migrates every table the api needs.
func ConnectDB(cfg *Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{
		// Duplicate-key errors surface as gorm.ErrDuplicatedKey; the payment guard relies on it.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns / 2)

	logger.Info("database connected")

	// Auto Migration: tables are created from the structs in internal/model
	if err := db.AutoMigrate(
		&model.User{},
		&model.Job{},
		&model.JobApplication{},
		&model.AttendanceRecord{},
		&model.AttendanceDay{},
		&model.PaymentAttempt{},
		&model.PaymentRecord{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}
