package handler

import (
	"shramik-backend/internal/middleware"
	"shramik-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboard *usecase.DashboardUsecase
}

func NewDashboardHandler(dashboard *usecase.DashboardUsecase) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.dashboard.EmployerStats(c.UserContext(), middleware.Identity(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Dashboard loaded", stats)
}
