package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/application/provisioning"
	"github.com/jhoicas/conecta-api/internal/application/usecase"
)

// CustomerHandler maneja las peticiones HTTP de clientes.
type CustomerHandler struct {
	uc           *usecase.CustomerUseCase
	provisioning *provisioning.Service
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *usecase.CustomerUseCase, p *provisioning.Service) *CustomerHandler {
	return &CustomerHandler{uc: uc, provisioning: p}
}

// Register godoc
// @Summary      Registrar cliente (técnico o admin)
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterCustomerRequest  true  "datos del cliente y plan opcional"
// @Success      201   {object}  dto.ActionResult{data=dto.CustomerResponse}
// @Failure      400   {object}  dto.ActionResult
// @Failure      403   {object}  dto.ActionResult
// @Failure      409   {object}  dto.ActionResult
// @Router       /api/customers [post]
func (h *CustomerHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.provisioning.RegisterCustomer(c.UserContext(), GetSession(c), in)
	if err != nil {
		return fail(c, err)
	}
	return succeed(c, fiber.StatusCreated, out)
}

// List GET /api/customers
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.uc.List(c.UserContext(), GetSession(c)))
}

// GetByID GET /api/customers/:id (null si no existe o no es visible)
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	return c.JSON(h.uc.GetByID(c.UserContext(), GetSession(c), c.Params("id")))
}

// Update godoc
// @Summary      Actualizar cliente
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del cliente"
// @Param        body  body  dto.UpdateCustomerRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.ActionResult{data=dto.CustomerResponse}
// @Failure      404   {object}  dto.ActionResult
// @Router       /api/customers/{id} [patch]
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetSession(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return succeed(c, fiber.StatusOK, out)
}

// Delete DELETE /api/customers/:id
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetSession(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return succeed(c, fiber.StatusOK, nil)
}

// CurrentPlan GET /api/customers/by-profile/:profileId/plan (null sin plan)
func (h *CustomerHandler) CurrentPlan(c *fiber.Ctx) error {
	return c.JSON(h.uc.CurrentPlan(c.UserContext(), GetSession(c), c.Params("profileId")))
}
