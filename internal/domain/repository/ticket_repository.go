package repository

import (
	"context"

	"github.com/jhoicas/conecta-api/internal/domain/entity"
)

// TicketRepository define el puerto de persistencia para Ticket.
type TicketRepository interface {
	// ListByWorker ordena por created_at descendente.
	ListByWorker(ctx context.Context, workerID string) ([]*entity.Ticket, error)
	// UpdateStatus devuelve domain.ErrNotFound si ninguna fila visible coincide.
	UpdateStatus(ctx context.Context, id, status string) error
}
