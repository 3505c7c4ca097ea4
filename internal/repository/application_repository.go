package repository

import (
	"context"

	"shramik-backend/internal/model"

	"gorm.io/gorm"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *model.JobApplication) error
	FindByID(ctx context.Context, id uint) (*model.JobApplication, error)
	FindLive(ctx context.Context, jobID, workerID uint) (*model.JobApplication, error)
	ListByJob(ctx context.Context, jobID uint) ([]model.JobApplication, error)
	ListByWorker(ctx context.Context, workerID uint) ([]model.JobApplication, error)
	// UpdateStatus moves an application from one status to another; it fails with ErrNotFound
	// when the stored status is no longer `from`.
	UpdateStatus(ctx context.Context, app *model.JobApplication, from model.ApplicationStatus) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db}
}

func (r *applicationRepository) Create(ctx context.Context, app *model.JobApplication) error {
	return translate(r.db.WithContext(ctx).Omit("Job", "Worker").Create(app).Error)
}

func (r *applicationRepository) FindByID(ctx context.Context, id uint) (*model.JobApplication, error) {
	var app model.JobApplication
	// Preload applicant and job, the notification needs both
	if err := r.db.WithContext(ctx).Preload("Job").Preload("Worker").First(&app, id).Error; err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (r *applicationRepository) FindLive(ctx context.Context, jobID, workerID uint) (*model.JobApplication, error) {
	var app model.JobApplication
	err := r.db.WithContext(ctx).
		Where("job_id = ? AND worker_id = ? AND status IN ?", jobID, workerID,
			[]model.ApplicationStatus{model.ApplicationPending, model.ApplicationAccepted}).
		Limit(1).Find(&app).Error
	if err != nil {
		return nil, translate(err)
	}
	if app.ID == 0 {
		return nil, ErrNotFound
	}
	return &app, nil
}

func (r *applicationRepository) ListByJob(ctx context.Context, jobID uint) ([]model.JobApplication, error) {
	var list []model.JobApplication
	err := r.db.WithContext(ctx).Preload("Worker").
		Where("job_id = ?", jobID).
		Order("created_at desc").
		Find(&list).Error
	return list, translate(err)
}

func (r *applicationRepository) ListByWorker(ctx context.Context, workerID uint) ([]model.JobApplication, error) {
	var list []model.JobApplication
	err := r.db.WithContext(ctx).Preload("Job").
		Where("worker_id = ?", workerID).
		Order("created_at desc").
		Find(&list).Error
	return list, translate(err)
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, app *model.JobApplication, from model.ApplicationStatus) error {
	res := r.db.WithContext(ctx).Model(&model.JobApplication{}).
		Where("id = ? AND status = ?", app.ID, from).
		Updates(map[string]interface{}{
			"status":     app.Status,
			"decided_at": app.DecidedAt,
			"left_at":    app.LeftAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
