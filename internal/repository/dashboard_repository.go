package repository

import (
	"context"

	"shramik-backend/internal/model"

	"gorm.io/gorm"
)

type EmployerStats struct {
	OpenJobs         int64 `json:"open_jobs"`
	PendingApps      int64 `json:"pending_applications"`
	AcceptedWorkers  int64 `json:"accepted_workers"`
	PeriodsThisMonth int64 `json:"periods_this_month"`
	UnpaidPeriods    int64 `json:"unpaid_periods"`
	PaidThisMonth    int64 `json:"paid_this_month"`
}

type DashboardRepository interface {
	GetEmployerStats(ctx context.Context, employerID uint, year, month int) (*EmployerStats, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db}
}

func (r *dashboardRepository) GetEmployerStats(ctx context.Context, employerID uint, year, month int) (*EmployerStats, error) {
	db := r.db.WithContext(ctx)
	stats := &EmployerStats{}

	// 1. Open jobs
	if err := db.Model(&model.Job{}).
		Where("employer_id = ? AND status = ?", employerID, model.JobOpen).
		Count(&stats.OpenJobs).Error; err != nil {
		return nil, err
	}

	// 2. Applications by status
	if err := db.Model(&model.JobApplication{}).
		Where("employer_id = ? AND status = ?", employerID, model.ApplicationPending).
		Count(&stats.PendingApps).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.JobApplication{}).
		Where("employer_id = ? AND status = ?", employerID, model.ApplicationAccepted).
		Count(&stats.AcceptedWorkers).Error; err != nil {
		return nil, err
	}

	// 3. Attendance periods this month, and periods without a payment
	if err := db.Model(&model.AttendanceRecord{}).
		Where("employer_id = ? AND year = ? AND month = ?", employerID, year, month).
		Count(&stats.PeriodsThisMonth).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.AttendanceRecord{}).
		Joins("LEFT JOIN payment_records ON payment_records.attendance_record_id = attendance_records.id").
		Where("attendance_records.employer_id = ? AND payment_records.id IS NULL", employerID).
		Count(&stats.UnpaidPeriods).Error; err != nil {
		return nil, err
	}

	// 4. Paid this month
	if err := db.Model(&model.PaymentRecord{}).
		Where("employer_id = ? AND period_year = ? AND period_month = ?", employerID, year, month).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.PaidThisMonth).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
