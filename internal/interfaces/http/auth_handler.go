package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conecta-api/internal/application/auth"
	"github.com/jhoicas/conecta-api/internal/application/dto"
)

// AuthHandler maneja login, logout y usuario actual.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.ActionResult{data=dto.LoginResponse}
// @Failure      400   {object}  dto.ActionResult
// @Failure      401   {object}  dto.ActionResult
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return succeed(c, fiber.StatusOK, out)
}

// Logout godoc
// @Summary      Cerrar sesión (revoca el token)
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.ActionResult
// @Failure      401  {object}  dto.ActionResult
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.uc.Logout(c.UserContext(), GetSession(c)); err != nil {
		return fail(c, err)
	}
	return succeed(c, fiber.StatusOK, nil)
}

// Me godoc
// @Summary      Usuario actual
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.ProfileResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(h.uc.CurrentUser(c.UserContext(), GetSession(c)))
}
