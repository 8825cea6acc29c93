package http

import (
	"context"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/domain"
)

// Locals keys para la sesión y el rol en Fiber.
const (
	LocalSession = "session"
	LocalRole    = "role"
)

// sessionVerifier lo implementa *auth.AuthUseCase.
type sessionVerifier interface {
	Session(ctx context.Context, token string) (*domain.Session, error)
}

// roleReader lo implementa *access.Gate; el rol sale del perfil, nunca del token.
type roleReader interface {
	RoleOf(ctx context.Context, actorID string) string
}

// AuthMiddleware valida el Bearer Token y deja la sesión en c.Locals.
func AuthMiddleware(v sessionVerifier) fiber.Handler {
	return sessionMiddleware(v, true)
}

// OptionalAuth como AuthMiddleware, pero sin header sigue como anónimo.
// Un token presente e inválido se rechaza igual.
func OptionalAuth(v sessionVerifier) fiber.Handler {
	return sessionMiddleware(v, false)
}

func sessionMiddleware(v sessionVerifier, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			if !required {
				return c.Next()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		s, err := v.Session(c.UserContext(), tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido, expirado o revocado"})
		}
		c.Locals(LocalSession, s)
		return c.Next()
	}
}

// RequireRole exige que el perfil del actor tenga uno de los roles. Usar después de AuthMiddleware.
func RequireRole(roles roleReader, allowed ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := GetSession(c)
		if s == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "No autorizado"})
		}
		role := roles.RoleOf(c.UserContext(), s.UserID)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el usuario no tiene perfil"})
		}
		if !slices.Contains(allowed, role) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para este recurso"})
		}
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

// GetSession devuelve la sesión del contexto o nil si la petición es anónima.
func GetSession(c *fiber.Ctx) *domain.Session {
	s, _ := c.Locals(LocalSession).(*domain.Session)
	return s
}

// GetUserID devuelve el id del actor o "".
func GetUserID(c *fiber.Ctx) string {
	return domain.ActorIDOf(GetSession(c))
}

// GetRole devuelve el rol resuelto por RequireRole o "".
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}
