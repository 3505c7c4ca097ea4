package model

import "time"

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
)

func (s AttendanceStatus) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// AttendanceRecord is one payroll period: a worker's attendance for one employer in one month.
// ID is the period key "{employerId}_{workerId}_{year}_{month}".
type AttendanceRecord struct {
	ID         string    `json:"id" gorm:"primaryKey;size:100"`
	EmployerID uint      `json:"employer_id" gorm:"not null;uniqueIndex:uniq_attendance_period"`
	WorkerID   uint      `json:"worker_id" gorm:"not null;uniqueIndex:uniq_attendance_period;index"`
	Year       int       `json:"year" gorm:"not null;uniqueIndex:uniq_attendance_period"`
	Month      int       `json:"month" gorm:"not null;uniqueIndex:uniq_attendance_period"`
	JobID      *uint     `json:"job_id"`
	JobTitle   string    `json:"job_title"`
	DailyRate  int64     `json:"daily_rate" gorm:"not null"`
	Version    uint      `json:"version" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Days []AttendanceDay `json:"-" gorm:"foreignKey:RecordID;references:ID"`
}

// Attendance returns the date -> status map of the record.
func (r *AttendanceRecord) Attendance() map[string]AttendanceStatus {
	m := make(map[string]AttendanceStatus, len(r.Days))
	for _, d := range r.Days {
		m[d.Date] = d.Status
	}
	return m
}

// AttendanceDay is a single date key of a record; (record_id, date) is unique so a mark is a
// patch of one key instead of a rewrite of the whole map.
type AttendanceDay struct {
	ID        uint             `json:"-" gorm:"primaryKey"`
	RecordID  string           `json:"record_id" gorm:"size:100;not null;uniqueIndex:uniq_record_date"`
	Date      string           `json:"date" gorm:"size:10;not null;uniqueIndex:uniq_record_date"` // YYYY-MM-DD
	Status    AttendanceStatus `json:"status" gorm:"size:10;not null"`
	MarkedBy  uint             `json:"marked_by"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
