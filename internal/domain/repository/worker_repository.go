package repository

import (
	"context"

	"github.com/jhoicas/conecta-api/internal/domain/entity"
)

// WorkerFilter filtros de listado. Campos vacíos no filtran.
type WorkerFilter struct {
	Position   string
	ActiveOnly bool
}

// WorkerRepository define el puerto de persistencia para Worker.
type WorkerRepository interface {
	Create(ctx context.Context, w *entity.Worker) (*entity.Worker, error)
	GetByProfileID(ctx context.Context, profileID string) (*entity.Worker, error)
	// List ordena por created_at descendente.
	List(ctx context.Context, f WorkerFilter) ([]*entity.Worker, error)
	Update(ctx context.Context, id string, patch entity.WorkerPatch) (*entity.Worker, error)
}
