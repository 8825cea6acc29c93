package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/domain"
)

// statusOf código HTTP según el Kind del error.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrIdentityCreation):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// fail responde un ActionResult fallido con el mensaje visible de err.
func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusOf(err)).JSON(dto.Fail(domain.MessageOf(err)))
}

// succeed responde un ActionResult exitoso.
func succeed(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(dto.OK(data))
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
}

// ErrorHandler manejador de errores de Fiber: rutas inexistentes, panics recuperados
// y errores devueltos sin responder.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "error interno"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(dto.ErrorResponse{Code: "HTTP_" + strconv.Itoa(code), Message: msg})
}
