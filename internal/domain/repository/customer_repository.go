package repository

import (
	"context"

	"github.com/jhoicas/conecta-api/internal/domain/entity"
)

// CustomerFilter filtros de listado. Campos vacíos no filtran.
type CustomerFilter struct {
	RegisteredBy string
}

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	// Create inserta y devuelve la fila creada (id y fechas asignados por la base).
	Create(ctx context.Context, c *entity.Customer) (*entity.Customer, error)
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetByProfileID(ctx context.Context, profileID string) (*entity.Customer, error)
	// List ordena por created_at descendente.
	List(ctx context.Context, f CustomerFilter) ([]*entity.Customer, error)
	// ListByIDs ordena por created_at descendente.
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Customer, error)
	Update(ctx context.Context, id string, patch entity.CustomerPatch) (*entity.Customer, error)
	SetRegisteredBy(ctx context.Context, id, workerID string) error
	Delete(ctx context.Context, id string) error
}
