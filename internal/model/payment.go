package model

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentMethod string

const (
	MethodRazorpay PaymentMethod = "razorpay" // gateway-A
	MethodPhonePe  PaymentMethod = "phonepe"  // gateway-B
)

func (m PaymentMethod) Valid() bool {
	return m == MethodRazorpay || m == MethodPhonePe
}

type AttemptStatus string

const (
	AttemptCapturing AttemptStatus = "capturing"
	AttemptSucceeded AttemptStatus = "succeeded"
	AttemptFailed    AttemptStatus = "failed"
	AttemptCancelled AttemptStatus = "cancelled"
	// AttemptUnknown: the gateway call timed out, money may or may not have moved.
	AttemptUnknown AttemptStatus = "unknown"
	// AttemptUnrecorded: capture verified but the payment record could not be written.
	AttemptUnrecorded AttemptStatus = "unrecorded"
)

// Open reports whether the attempt still blocks a new initiation for its period.
func (s AttemptStatus) Open() bool {
	return s == AttemptCapturing || s == AttemptUnknown || s == AttemptUnrecorded
}

// PaymentAttempt tracks one capture of a period's total through a gateway.
type PaymentAttempt struct {
	ID                 string            `json:"id" gorm:"primaryKey;size:36"`
	AttendanceRecordID string            `json:"attendance_record_id" gorm:"size:100;not null;index"`
	EmployerID         uint              `json:"employer_id" gorm:"not null;index"`
	WorkerID           uint              `json:"worker_id" gorm:"not null"`
	Method             PaymentMethod     `json:"method" gorm:"size:20;not null"`
	Amount             int64             `json:"amount" gorm:"not null"`
	WorkDays           int               `json:"work_days"`
	DailyRate          int64             `json:"daily_rate"`
	WorkPeriod         string            `json:"work_period"`
	JobTitle           string            `json:"job_title"`
	GatewayOrderID     string            `json:"gateway_order_id" gorm:"size:100;index"`
	GatewayPaymentID   string            `json:"gateway_payment_id" gorm:"size:100"`
	CheckoutURL        string            `json:"checkout_url,omitempty"`
	Status             AttemptStatus     `json:"status" gorm:"size:20;not null;index"`
	FailureReason      string            `json:"failure_reason,omitempty"`
	Notes              datatypes.JSONMap `json:"notes" gorm:"type:json"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

const PaymentCompleted = "completed"

// PaymentRecord is an append-only settlement of one attendance period.
// AttendanceRecordID is unique: a period can be paid at most once.
type PaymentRecord struct {
	ID                 string        `json:"id" gorm:"primaryKey;size:36"`
	EmployerID         uint          `json:"employer_id" gorm:"not null;index"`
	WorkerID           uint          `json:"worker_id" gorm:"not null;index"`
	AttendanceRecordID string        `json:"attendance_record_id" gorm:"size:100;not null;uniqueIndex:uniq_payment_period"`
	AttemptID          string        `json:"attempt_id" gorm:"size:36"`
	JobTitle           string        `json:"job_title"`
	Amount             int64         `json:"amount" gorm:"not null"`
	WorkDays           int           `json:"work_days"`
	WorkPeriod         string        `json:"work_period"`
	PeriodYear         int           `json:"period_year" gorm:"index:idx_payment_period_month"`
	PeriodMonth        int           `json:"period_month" gorm:"index:idx_payment_period_month"`
	DailyRate          int64         `json:"daily_rate"`
	PaymentMethod      PaymentMethod `json:"payment_method" gorm:"size:20"`
	GatewayOrderID     string        `json:"order_id" gorm:"size:100"`
	GatewayPaymentID   string        `json:"payment_id" gorm:"size:100"`
	Status             string        `json:"status" gorm:"size:20;default:completed"`
	PaidAt             time.Time     `json:"paid_at"`
	CreatedAt          time.Time     `json:"created_at"`
}
