package database

import (
	"fmt"
	"log/slog"
	"time"

	"shramik-backend/internal/model"
	"shramik-backend/internal/usecase"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DemoPassword = "password123"

// SeedAll creates a demo employer and worker, an open job, an accepted application and the
// worker's attendance for the current month. Running it twice changes nothing.
func SeedAll(db *gorm.DB, now time.Time, logger *slog.Logger) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// 1. Accounts
	employer := model.User{
		Name:          "Ramesh Constructions",
		Email:         "employer@shramik.test",
		Phone:         "9876500001",
		Password:      string(hashedPassword),
		Role:          model.RoleEmployer,
		EmailVerified: true,
		City:          "Pune",
	}
	if err := db.Where(model.User{Email: employer.Email}).FirstOrCreate(&employer).Error; err != nil {
		return fmt.Errorf("seed employer: %w", err)
	}

	worker := model.User{
		Name:          "Suresh Kumar",
		Email:         "worker@shramik.test",
		Phone:         "9876500002",
		Password:      string(hashedPassword),
		Role:          model.RoleWorker,
		EmailVerified: true,
		City:          "Pune",
		Skills:        "masonry,painting",
	}
	if err := db.Where(model.User{Email: worker.Email}).FirstOrCreate(&worker).Error; err != nil {
		return fmt.Errorf("seed worker: %w", err)
	}
	logger.Info("demo accounts ready", "employer", employer.Email, "worker", worker.Email)

	// 2. Job
	job := model.Job{
		EmployerID:  employer.ID,
		Title:       "Mason",
		Description: "Brickwork for a residential site, 9am to 6pm",
		DailyRate:   500,
		Address:     "Kothrud, Pune",
		Latitude:    18.5074,
		Longitude:   73.8077,
		Openings:    3,
		Status:      model.JobOpen,
	}
	if err := db.Where(model.Job{EmployerID: employer.ID, Title: job.Title}).FirstOrCreate(&job).Error; err != nil {
		return fmt.Errorf("seed job: %w", err)
	}

	// 3. Accepted application
	decided := now
	app := model.JobApplication{
		JobID:      job.ID,
		WorkerID:   worker.ID,
		EmployerID: employer.ID,
		Status:     model.ApplicationAccepted,
		Message:    "5 years of site experience",
		DecidedAt:  &decided,
	}
	if err := db.Where(model.JobApplication{JobID: job.ID, WorkerID: worker.ID}).FirstOrCreate(&app).Error; err != nil {
		return fmt.Errorf("seed application: %w", err)
	}

	// 4. Attendance for the current month, first days up to today
	year, month := now.Year(), int(now.Month())
	record := model.AttendanceRecord{
		ID:         usecase.PeriodKey(employer.ID, worker.ID, year, month),
		EmployerID: employer.ID,
		WorkerID:   worker.ID,
		Year:       year,
		Month:      month,
		JobID:      &job.ID,
		JobTitle:   job.Title,
		DailyRate:  job.DailyRate,
	}
	if err := db.Where(model.AttendanceRecord{ID: record.ID}).FirstOrCreate(&record).Error; err != nil {
		return fmt.Errorf("seed attendance: %w", err)
	}

	var days []model.AttendanceDay
	for d := 1; d <= 3 && d < now.Day(); d++ {
		status := model.StatusPresent
		if d == 2 {
			status = model.StatusAbsent
		}
		days = append(days, model.AttendanceDay{
			RecordID: record.ID,
			Date:     time.Date(year, now.Month(), d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			Status:   status,
			MarkedBy: employer.ID,
		})
	}
	if len(days) > 0 {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&days).Error; err != nil {
			return fmt.Errorf("seed attendance days: %w", err)
		}
	}

	logger.Info("seeding finished", "job_id", job.ID, "attendance_record", record.ID, "days", len(days))
	return nil
}
