package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
)

var _ repository.TicketRepository = (*TicketRepo)(nil)

// TicketRepo implementación de TicketRepository (usable con pool o tx).
type TicketRepo struct {
	q Querier
}

// NewTicketRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTicketRepository(q Querier) *TicketRepo {
	return &TicketRepo{q: q}
}

// ListByWorker tickets asignados al técnico, más recientes primero.
func (r *TicketRepo) ListByWorker(ctx context.Context, workerID string) ([]*entity.Ticket, error) {
	query := `
		SELECT id, title, COALESCE(description, ''), status, priority, assigned_worker, customer_id, created_at
		FROM tickets WHERE assigned_worker = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, workerID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()
	var list []*entity.Ticket
	for rows.Next() {
		var t entity.Ticket
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.AssignedWorker, &t.CustomerID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado interno del ticket.
func (r *TicketRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE tickets SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update ticket status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
