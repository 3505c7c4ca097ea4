package handler

import (
	"strconv"

	"shramik-backend/internal/middleware"
	"shramik-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type JobHandler struct {
	jobs *usecase.JobUsecase
}

func NewJobHandler(jobs *usecase.JobUsecase) *JobHandler {
	return &JobHandler{jobs: jobs}
}

type CreateJobRequest struct {
	Title       string  `json:"title" validate:"required,max=150"`
	Description string  `json:"description" validate:"max=5000"`
	DailyRate   int64   `json:"daily_rate" validate:"required,gt=0"`
	Address     string  `json:"address" validate:"max=255"`
	Latitude    float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" validate:"min=-180,max=180"`
	Openings    int     `json:"openings" validate:"min=0,max=1000"`
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	var req CreateJobRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	job, err := h.jobs.Post(c.UserContext(), middleware.Identity(c), usecase.JobInput{
		Title:       req.Title,
		Description: req.Description,
		DailyRate:   req.DailyRate,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Openings:    req.Openings,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Job posted", "data": job})
}

// ListOpen serves ?search=&lat=&lng=&radius_km=
func (h *JobHandler) ListOpen(c *fiber.Ctx) error {
	q := usecase.JobQuery{Search: c.Query("search")}
	if c.Query("radius_km") != "" {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		radius, errRadius := strconv.ParseFloat(c.Query("radius_km"), 64)
		if errLat != nil || errLng != nil || errRadius != nil || radius <= 0 {
			return respondError(c, usecase.ErrInvalidInput.WithMessage("lat, lng and a positive radius_km are required together"))
		}
		q.Latitude, q.Longitude, q.RadiusKm = lat, lng, radius
	}

	jobs, err := h.jobs.ListOpen(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Jobs loaded", jobs)
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(c, usecase.ErrInvalidInput.WithMessage("invalid job id"))
	}
	job, err := h.jobs.Get(c.UserContext(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Job loaded", job)
}

func (h *JobHandler) ListMine(c *fiber.Ctx) error {
	jobs, err := h.jobs.ListMine(c.UserContext(), middleware.Identity(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Jobs loaded", jobs)
}

func (h *JobHandler) Close(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(c, usecase.ErrInvalidInput.WithMessage("invalid job id"))
	}
	job, err := h.jobs.Close(c.UserContext(), middleware.Identity(c), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Job closed", job)
}
