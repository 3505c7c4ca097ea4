package model

import "gorm.io/gorm"

type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
)

type Job struct {
	gorm.Model
	EmployerID  uint      `json:"employer_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	DailyRate   int64     `json:"daily_rate" gorm:"not null"`
	Address     string    `json:"address"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Openings    int       `json:"openings" gorm:"default:1"`
	Status      JobStatus `json:"status" gorm:"size:20;default:open;index"`

	// Preloaded for listings
	Employer User `json:"employer" gorm:"foreignKey:EmployerID"`
}
