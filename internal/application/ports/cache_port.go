package ports

import (
	"context"
	"time"

	"github.com/jhoicas/conecta-api/internal/domain/entity"
)

// PlanCache caché del catálogo de planes activos. Un fallo de caché nunca
// impide la lectura: el llamador consulta la base y sigue.
type PlanCache interface {
	// GetActivePlans devuelve (nil, false, nil) si no hay entrada.
	GetActivePlans(ctx context.Context) ([]*entity.Plan, bool, error)
	SetActivePlans(ctx context.Context, plans []*entity.Plan) error
}

// TokenDenylist tokens de acceso revocados por logout antes de su expiración.
type TokenDenylist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
