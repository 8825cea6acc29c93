package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/conecta-api/internal/application/analytics"
)

// DashboardHandler maneja los paneles de administrador y técnico.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Admin devuelve clientes y técnicos con sus totales.
// GET /api/dashboard/admin
func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	out, err := h.uc.AdminSummary(c.UserContext(), GetSession(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Worker devuelve las órdenes del técnico y sus clientes con plan vigente.
// GET /api/dashboard/worker
func (h *DashboardHandler) Worker(c *fiber.Ctx) error {
	out, err := h.uc.WorkerSummary(c.UserContext(), GetSession(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
