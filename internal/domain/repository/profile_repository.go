package repository

import (
	"context"

	"github.com/jhoicas/conecta-api/internal/domain/entity"
)

// ProfileRepository define el puerto de persistencia para Profile.
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	// GetByID devuelve nil, nil si no existe (o la política de filas lo oculta).
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByEmail(ctx context.Context, email string) (*entity.Profile, error)
	// ListByIDs obtiene en una sola consulta los perfiles de ids.
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Profile, error)
	Delete(ctx context.Context, id string) error
}
