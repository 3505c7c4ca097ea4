package repository

import (
	"context"
	"time"

	"shramik-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceRepository interface {
	FindByID(ctx context.Context, id string) (*model.AttendanceRecord, error)
	Create(ctx context.Context, record *model.AttendanceRecord) error
	UpsertDay(ctx context.Context, day model.AttendanceDay) error
	UpdateDailyRate(ctx context.Context, id string, dailyRate int64) error
	ListByWorker(ctx context.Context, workerID uint) ([]model.AttendanceRecord, error)
	ListByEmployer(ctx context.Context, employerID uint, year, month int) ([]model.AttendanceRecord, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db}
}

func (r *attendanceRepository) FindByID(ctx context.Context, id string) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("date asc") }).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r *attendanceRepository) Create(ctx context.Context, record *model.AttendanceRecord) error {
	return translate(r.db.WithContext(ctx).Omit("Days").Create(record).Error)
}

// UpsertDay writes a single date key and bumps the record version in one transaction.
// Concurrent marks of different dates touch different rows and never overwrite each other.
func (r *attendanceRepository) UpsertDay(ctx context.Context, day model.AttendanceDay) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "record_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "marked_by", "updated_at"}),
		}).Create(&day).Error
		if err != nil {
			return err
		}

		res := tx.Model(&model.AttendanceRecord{}).
			Where("id = ?", day.RecordID).
			Updates(map[string]interface{}{
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}

func (r *attendanceRepository) UpdateDailyRate(ctx context.Context, id string, dailyRate int64) error {
	res := r.db.WithContext(ctx).Model(&model.AttendanceRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"daily_rate": dailyRate,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *attendanceRepository) ListByWorker(ctx context.Context, workerID uint) ([]model.AttendanceRecord, error) {
	var list []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Days").
		Where("worker_id = ?", workerID).
		Order("year desc, month desc").
		Find(&list).Error
	return list, translate(err)
}

func (r *attendanceRepository) ListByEmployer(ctx context.Context, employerID uint, year, month int) ([]model.AttendanceRecord, error) {
	var list []model.AttendanceRecord
	q := r.db.WithContext(ctx).Preload("Days").Where("employer_id = ?", employerID)
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	if month > 0 {
		q = q.Where("month = ?", month)
	}
	err := q.Order("year desc, month desc, worker_id asc").Find(&list).Error
	return list, translate(err)
}
