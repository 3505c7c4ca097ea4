package model

import "gorm.io/gorm"

type Role string

const (
	RoleEmployer Role = "employer"
	RoleWorker   Role = "worker"
)

type User struct {
	gorm.Model
	Name          string `json:"name"`
	Email         string `json:"email" gorm:"size:191;unique;not null"`
	Phone         string `json:"phone" gorm:"size:20"`
	Password      string `json:"-"`
	Role          Role   `json:"role" gorm:"size:20;not null;index"`
	EmailVerified bool   `json:"email_verified" gorm:"default:false"`
	City          string `json:"city"`
	Skills        string `json:"skills"` // comma separated, worker only
}
