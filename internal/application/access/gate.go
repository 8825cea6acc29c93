// Package access decide con qué credenciales se ejecuta cada operación.
// El rol se lee siempre del perfil almacenado; nunca de claims del token ni de la petición.
package access

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
)

// Gate resuelve el nivel de acceso del actor.
type Gate struct {
	store  repository.Store
	logger zerolog.Logger
}

// NewGate construye el gate.
func NewGate(store repository.Store, logger zerolog.Logger) *Gate {
	return &Gate{store: store, logger: logger}
}

// Resolve nivel para lecturas: sin sesión, usuario anónimo; con sesión se lee el rol del
// perfil con el nivel de usuario y solo un admin confirmado obtiene el nivel de servicio.
// Cualquier fallo al leer el perfil deja el nivel de usuario.
func (g *Gate) Resolve(ctx context.Context, s *domain.Session) domain.AccessContext {
	actorID := domain.ActorIDOf(s)
	ac := domain.UserAccess(actorID)
	if actorID == "" {
		return ac
	}
	ac.Role = g.RoleOf(ctx, actorID)
	if ac.Role == entity.RoleAdmin {
		ac.Tier = domain.TierService
	}
	return ac
}

// Require exige sesión y, si se indican roles, que el rol del perfil sea uno de ellos.
// ErrUnauthorized sin sesión; ErrForbidden si el rol no coincide o no se pudo leer.
func (g *Gate) Require(ctx context.Context, s *domain.Session, roles ...string) (domain.AccessContext, error) {
	if domain.ActorIDOf(s) == "" {
		return domain.AccessContext{}, domain.ErrUnauthorized
	}
	ac := g.Resolve(ctx, s)
	if len(roles) > 0 && !slices.Contains(roles, ac.Role) {
		return ac, domain.ErrForbidden
	}
	return ac, nil
}

// RoleOf rol del perfil de actorID leído con su propio nivel de usuario; "" si no existe o falla.
func (g *Gate) RoleOf(ctx context.Context, actorID string) string {
	var role string
	err := g.store.Run(ctx, domain.UserAccess(actorID), func(r repository.Repositories) error {
		p, err := r.Profiles.GetByID(ctx, actorID)
		if err != nil {
			return err
		}
		if p != nil {
			role = p.Role
		}
		return nil
	})
	if err != nil {
		g.logger.Warn().Err(err).Str("actor_id", actorID).Msg("no se pudo leer el rol del actor; se usa nivel de usuario")
		return ""
	}
	return role
}
