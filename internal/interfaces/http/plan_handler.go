package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conecta-api/internal/application/usecase"
)

// PlanHandler catálogo de planes.
type PlanHandler struct {
	uc *usecase.PlanUseCase
}

// NewPlanHandler construye el handler.
func NewPlanHandler(uc *usecase.PlanUseCase) *PlanHandler {
	return &PlanHandler{uc: uc}
}

// List GET /api/plans (planes activos por precio ascendente; público)
func (h *PlanHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.uc.ListActive(c.UserContext(), GetSession(c)))
}
