package handler

import (
	"shramik-backend/internal/middleware"
	"shramik-backend/internal/model"
	"shramik-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type ApplicationHandler struct {
	apps *usecase.ApplicationUsecase
}

func NewApplicationHandler(apps *usecase.ApplicationUsecase) *ApplicationHandler {
	return &ApplicationHandler{apps: apps}
}

type ApplyRequest struct {
	Message string `json:"message" validate:"max=1000"`
}

type DecideRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	jobID, err := c.ParamsInt("id")
	if err != nil || jobID <= 0 {
		return respondError(c, usecase.ErrInvalidInput.WithMessage("invalid job id"))
	}

	// The body is optional here
	var req ApplyRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
	}

	app, err := h.apps.Apply(c.UserContext(), middleware.Identity(c), uint(jobID), req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Application sent", "data": app})
}

func (h *ApplicationHandler) Decide(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(c, usecase.ErrInvalidInput.WithMessage("invalid application id"))
	}
	var req DecideRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	app, err := h.apps.Decide(c.UserContext(), middleware.Identity(c), uint(id), model.ApplicationStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Application "+req.Status, app)
}

func (h *ApplicationHandler) Leave(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return respondError(c, usecase.ErrInvalidInput.WithMessage("invalid application id"))
	}

	app, err := h.apps.Leave(c.UserContext(), middleware.Identity(c), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "You have left this job", app)
}

func (h *ApplicationHandler) ListForJob(c *fiber.Ctx) error {
	jobID, err := c.ParamsInt("id")
	if err != nil || jobID <= 0 {
		return respondError(c, usecase.ErrInvalidInput.WithMessage("invalid job id"))
	}

	list, err := h.apps.ListForJob(c.UserContext(), middleware.Identity(c), uint(jobID))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Applications loaded", list)
}

func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	list, err := h.apps.ListMine(c.UserContext(), middleware.Identity(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Applications loaded", list)
}
