package repository

import (
	"context"

	"shramik-backend/internal/model"

	"gorm.io/gorm"
)

type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	FindByID(ctx context.Context, id uint) (*model.Job, error)
	Update(ctx context.Context, job *model.Job) error
	ListOpen(ctx context.Context, search string) ([]model.Job, error)
	ListByEmployer(ctx context.Context, employerID uint) ([]model.Job, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db}
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	return translate(r.db.WithContext(ctx).Omit("Employer").Create(job).Error)
}

func (r *jobRepository) FindByID(ctx context.Context, id uint) (*model.Job, error) {
	var job model.Job
	if err := r.db.WithContext(ctx).Preload("Employer").First(&job, id).Error; err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	return translate(r.db.WithContext(ctx).Omit("Employer").Save(job).Error)
}

func (r *jobRepository) ListOpen(ctx context.Context, search string) ([]model.Job, error) {
	var jobs []model.Job
	query := r.db.WithContext(ctx).Preload("Employer").Where("status = ?", model.JobOpen)

	if search != "" {
		searchPattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR address LIKE ?", searchPattern, searchPattern)
	}

	err := query.Order("created_at desc").Find(&jobs).Error
	return jobs, translate(err)
}

func (r *jobRepository) ListByEmployer(ctx context.Context, employerID uint) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).Where("employer_id = ?", employerID).Order("created_at desc").Find(&jobs).Error
	return jobs, translate(err)
}
