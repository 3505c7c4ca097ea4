package handler

import (
	"strconv"

	"shramik-backend/internal/middleware"
	"shramik-backend/internal/model"
	"shramik-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type AttendanceHandler struct {
	attendance *usecase.AttendanceUsecase
}

func NewAttendanceHandler(attendance *usecase.AttendanceUsecase) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

type LoadAttendanceRequest struct {
	WorkerID  uint   `json:"worker_id" validate:"required"`
	Year      int    `json:"year" validate:"required,min=2000,max=2100"`
	Month     int    `json:"month" validate:"required,min=1,max=12"`
	DailyRate int64  `json:"daily_rate" validate:"min=0"`
	JobTitle  string `json:"job_title" validate:"max=150"`
	JobID     *uint  `json:"job_id"`
}

type MarkDayRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Status string `json:"status" validate:"required,oneof=present absent"`
}

type UpdateRateRequest struct {
	DailyRate int64 `json:"daily_rate" validate:"required,gt=0"`
}

// LoadOrCreate opens the employer's calendar for one worker and month.
func (h *AttendanceHandler) LoadOrCreate(c *fiber.Ctx) error {
	var req LoadAttendanceRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	caller := middleware.Identity(c)
	view, err := h.attendance.LoadOrCreate(c.UserContext(), caller, usecase.LoadInput{
		EmployerID: caller.UserID,
		WorkerID:   req.WorkerID,
		Year:       req.Year,
		Month:      req.Month,
		DailyRate:  req.DailyRate,
		JobTitle:   req.JobTitle,
		JobID:      req.JobID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Attendance loaded", view)
}

func (h *AttendanceHandler) MarkDay(c *fiber.Ctx) error {
	var req MarkDayRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	view, err := h.attendance.MarkDay(c.UserContext(), middleware.Identity(c), usecase.MarkInput{
		RecordID: c.Params("id"),
		Date:     req.Date,
		Status:   model.AttendanceStatus(req.Status),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Marked "+req.Date+" as "+req.Status, view)
}

func (h *AttendanceHandler) Get(c *fiber.Ctx) error {
	view, err := h.attendance.Get(c.UserContext(), middleware.Identity(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Attendance loaded", view)
}

func (h *AttendanceHandler) UpdateRate(c *fiber.Ctx) error {
	var req UpdateRateRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	view, err := h.attendance.UpdateDailyRate(c.UserContext(), middleware.Identity(c), c.Params("id"), req.DailyRate)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Daily rate updated", view)
}

// List serves ?year=&month= for the caller's periods, as employer or as worker.
func (h *AttendanceHandler) List(c *fiber.Ctx) error {
	year, month, err := periodQuery(c)
	if err != nil {
		return respondError(c, err)
	}

	views, err := h.attendance.List(c.UserContext(), middleware.Identity(c), year, month)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Attendance loaded", views)
}

// periodQuery reads optional year and month query params; zero means "any".
func periodQuery(c *fiber.Ctx) (int, int, error) {
	var year, month int
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 2000 || y > 2100 {
			return 0, 0, usecase.ErrInvalidPeriod
		}
		year = y
	}
	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, usecase.ErrInvalidPeriod
		}
		month = m
	}
	return year, month, nil
}
