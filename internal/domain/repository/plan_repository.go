package repository

import (
	"context"

	"github.com/jhoicas/conecta-api/internal/domain/entity"
)

// PlanRepository puerto de lectura de planes (solo lectura para esta API).
type PlanRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Plan, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Plan, error)
	// ListActive ordena por precio ascendente.
	ListActive(ctx context.Context) ([]*entity.Plan, error)
}
