package repository

import (
	"context"

	"shramik-backend/internal/model"

	"gorm.io/gorm"
)

type PaymentFilter struct {
	Year   int
	Month  int
	Limit  int
	Offset int
}

type PaymentRepository interface {
	CreateAttempt(ctx context.Context, attempt *model.PaymentAttempt) error
	UpdateAttempt(ctx context.Context, attempt *model.PaymentAttempt) error
	FindAttempt(ctx context.Context, id string) (*model.PaymentAttempt, error)
	FindAttemptByOrderID(ctx context.Context, orderID string) (*model.PaymentAttempt, error)
	FindOpenAttempts(ctx context.Context, recordID string) ([]model.PaymentAttempt, error)

	CreateRecord(ctx context.Context, record *model.PaymentRecord) error
	FindRecordByPeriod(ctx context.Context, recordID string) (*model.PaymentRecord, error)
	ListByEmployer(ctx context.Context, employerID uint, filter PaymentFilter) ([]model.PaymentRecord, error)
	ListByWorker(ctx context.Context, workerID uint, filter PaymentFilter) ([]model.PaymentRecord, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db}
}

func (r *paymentRepository) CreateAttempt(ctx context.Context, attempt *model.PaymentAttempt) error {
	return translate(r.db.WithContext(ctx).Create(attempt).Error)
}

func (r *paymentRepository) UpdateAttempt(ctx context.Context, attempt *model.PaymentAttempt) error {
	return translate(r.db.WithContext(ctx).Save(attempt).Error)
}

func (r *paymentRepository) FindAttempt(ctx context.Context, id string) (*model.PaymentAttempt, error) {
	var attempt model.PaymentAttempt
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error; err != nil {
		return nil, translate(err)
	}
	return &attempt, nil
}

func (r *paymentRepository) FindAttemptByOrderID(ctx context.Context, orderID string) (*model.PaymentAttempt, error) {
	var attempt model.PaymentAttempt
	if err := r.db.WithContext(ctx).Where("gateway_order_id = ?", orderID).First(&attempt).Error; err != nil {
		return nil, translate(err)
	}
	return &attempt, nil
}

func (r *paymentRepository) FindOpenAttempts(ctx context.Context, recordID string) ([]model.PaymentAttempt, error) {
	var list []model.PaymentAttempt
	err := r.db.WithContext(ctx).
		Where("attendance_record_id = ? AND status IN ?", recordID, []model.AttemptStatus{
			model.AttemptCapturing, model.AttemptUnknown, model.AttemptUnrecorded,
		}).
		Order("created_at desc").
		Find(&list).Error
	return list, translate(err)
}

// CreateRecord relies on uniq_payment_period: a second record for the same period fails with
// ErrDuplicate even when two writers passed the existence check at the same time.
func (r *paymentRepository) CreateRecord(ctx context.Context, record *model.PaymentRecord) error {
	return translate(r.db.WithContext(ctx).Create(record).Error)
}

func (r *paymentRepository) FindRecordByPeriod(ctx context.Context, recordID string) (*model.PaymentRecord, error) {
	var record model.PaymentRecord
	// Find + Limit(1) so gorm does not log "record not found" for the common unpaid case
	err := r.db.WithContext(ctx).Where("attendance_record_id = ?", recordID).Limit(1).Find(&record).Error
	if err != nil {
		return nil, translate(err)
	}
	if record.ID == "" {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (r *paymentRepository) ListByEmployer(ctx context.Context, employerID uint, filter PaymentFilter) ([]model.PaymentRecord, error) {
	return r.list(ctx, "employer_id", employerID, filter)
}

func (r *paymentRepository) ListByWorker(ctx context.Context, workerID uint, filter PaymentFilter) ([]model.PaymentRecord, error) {
	return r.list(ctx, "worker_id", workerID, filter)
}

func (r *paymentRepository) list(ctx context.Context, field string, id uint, filter PaymentFilter) ([]model.PaymentRecord, error) {
	var list []model.PaymentRecord
	q := r.db.WithContext(ctx).Where(field+" = ?", id)
	if filter.Year > 0 {
		q = q.Where("period_year = ?", filter.Year)
	}
	if filter.Month > 0 {
		q = q.Where("period_month = ?", filter.Month)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	err := q.Order("paid_at desc").Find(&list).Error
	return list, translate(err)
}
