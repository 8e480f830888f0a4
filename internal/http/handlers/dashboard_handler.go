package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockbook/internal/services"
)

type DashboardHandler struct {
	Dashboard *services.DashboardService
}

// GET /api/v1/dashboard
func (h *DashboardHandler) JSON(c *fiber.Ctx) error {
	d, err := h.Dashboard.Stats(c.UserContext())
	if err != nil {
		return respond(c, "dashboard.stats", err)
	}
	return c.JSON(d)
}

// GET /dashboard
func (h *DashboardHandler) Page(c *fiber.Ctx) error {
	d, err := h.Dashboard.Stats(c.UserContext())
	if err != nil {
		return respond(c, "dashboard.page", err)
	}
	return render(c, "dashboard", fiber.Map{"Stats": d})
}
