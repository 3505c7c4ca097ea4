package model

import (
	"time"

	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
	ApplicationLeft     ApplicationStatus = "left"
)

// Terminal reports whether no further transition is allowed from s.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationRejected || s == ApplicationLeft
}

type JobApplication struct {
	gorm.Model
	JobID      uint              `json:"job_id" gorm:"not null;index"`
	WorkerID   uint              `json:"worker_id" gorm:"not null;index"`
	EmployerID uint              `json:"employer_id" gorm:"not null;index"`
	Status     ApplicationStatus `json:"status" gorm:"size:20;default:pending"`
	Message    string            `json:"message"`
	DecidedAt  *time.Time        `json:"decided_at"`
	LeftAt     *time.Time        `json:"left_at"`

	// Preloaded for listings
	Job    Job  `json:"job" gorm:"foreignKey:JobID"`
	Worker User `json:"worker" gorm:"foreignKey:WorkerID"`
}
