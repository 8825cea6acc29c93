package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/application/provisioning"
	"github.com/jhoicas/conecta-api/internal/application/usecase"
)

// WorkerHandler técnicos, sus clientes y sus órdenes de servicio.
type WorkerHandler struct {
	workers      *usecase.WorkerUseCase
	customers    *usecase.CustomerUseCase
	tickets      *usecase.TicketUseCase
	provisioning *provisioning.Service
}

// NewWorkerHandler construye el handler.
func NewWorkerHandler(workers *usecase.WorkerUseCase, customers *usecase.CustomerUseCase, tickets *usecase.TicketUseCase, p *provisioning.Service) *WorkerHandler {
	return &WorkerHandler{workers: workers, customers: customers, tickets: tickets, provisioning: p}
}

// Register godoc
// @Summary      Registrar técnico (admin)
// @Tags         workers
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterWorkerRequest  true  "datos del técnico"
// @Success      201   {object}  dto.ActionResult{data=dto.WorkerResponse}
// @Failure      400   {object}  dto.ActionResult
// @Failure      409   {object}  dto.ActionResult
// @Router       /api/workers [post]
func (h *WorkerHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterWorkerRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.provisioning.RegisterWorker(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return succeed(c, fiber.StatusCreated, out)
}

// List GET /api/workers?position=Instalador
func (h *WorkerHandler) List(c *fiber.Ctx) error {
	if position := c.Query("position"); position != "" {
		return c.JSON(h.workers.ListByPosition(c.UserContext(), GetSession(c), position))
	}
	return c.JSON(h.workers.List(c.UserContext(), GetSession(c)))
}

// Update PATCH /api/workers/:id (admin)
func (h *WorkerHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateWorkerRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.workers.Update(c.UserContext(), GetSession(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return succeed(c, fiber.StatusOK, out)
}

// ListCustomers GET /api/workers/:profileId/customers
func (h *WorkerHandler) ListCustomers(c *fiber.Ctx) error {
	return c.JSON(h.customers.ListForWorker(c.UserContext(), GetSession(c), c.Params("profileId")))
}

// AssignCustomer godoc
// @Summary      Asignar cliente a un técnico por email
// @Tags         workers
// @Accept       json
// @Produce      json
// @Param        profileId  path  string                     true  "perfil del técnico"
// @Param        body       body  dto.AssignCustomerRequest  true  "email del cliente"
// @Success      200        {object}  dto.ActionResult
// @Failure      404        {object}  dto.ActionResult
// @Router       /api/workers/{profileId}/customers [post]
func (h *WorkerHandler) AssignCustomer(c *fiber.Ctx) error {
	var in dto.AssignCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.customers.AssignToWorker(c.UserContext(), GetSession(c), in.Email, c.Params("profileId")); err != nil {
		return fail(c, err)
	}
	return succeed(c, fiber.StatusOK, nil)
}

// ListServices GET /api/workers/:profileId/services
func (h *WorkerHandler) ListServices(c *fiber.Ctx) error {
	return c.JSON(h.tickets.ListForWorker(c.UserContext(), GetSession(c), c.Params("profileId")))
}
