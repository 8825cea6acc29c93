package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/application/usecase"
)

// ServiceHandler órdenes de servicio.
type ServiceHandler struct {
	uc *usecase.TicketUseCase
}

// NewServiceHandler construye el handler.
func NewServiceHandler(uc *usecase.TicketUseCase) *ServiceHandler {
	return &ServiceHandler{uc: uc}
}

// UpdateStatus godoc
// @Summary      Cambiar el estado de una orden de servicio
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true  "ID de la orden"
// @Param        body  body  dto.UpdateServiceStatusRequest  true  "pendiente | en_progreso | completado | cancelado"
// @Success      200   {object}  dto.ActionResult
// @Failure      400   {object}  dto.ActionResult
// @Failure      404   {object}  dto.ActionResult
// @Router       /api/services/{id}/status [patch]
func (h *ServiceHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateServiceStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.uc.UpdateStatus(c.UserContext(), GetSession(c), c.Params("id"), in.Estado); err != nil {
		return fail(c, err)
	}
	return succeed(c, fiber.StatusOK, nil)
}
