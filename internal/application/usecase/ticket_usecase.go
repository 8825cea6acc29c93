package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/conecta-api/internal/application/access"
	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
	"github.com/jhoicas/conecta-api/internal/domain/ticket"
	"github.com/jhoicas/conecta-api/pkg/metrics"
)

// TicketUseCase órdenes de servicio de los técnicos.
type TicketUseCase struct {
	reader
}

// NewTicketUseCase construye el caso de uso. m puede ser nil.
func NewTicketUseCase(store repository.Store, gate *access.Gate, m *metrics.ReadMetrics, logger zerolog.Logger) *TicketUseCase {
	return &TicketUseCase{reader{store: store, gate: gate, metrics: m, logger: logger}}
}

// ListForWorker órdenes asignadas al técnico de profileID, más recientes primero,
// con estado y prioridad en el vocabulario externo.
func (uc *TicketUseCase) ListForWorker(ctx context.Context, s *domain.Session, profileID string) []dto.ServiceResponse {
	out := []dto.ServiceResponse{}
	err := uc.store.Run(ctx, uc.gate.Resolve(ctx, s), func(r repository.Repositories) error {
		w, err := r.Workers.GetByProfileID(ctx, profileID)
		if err != nil || w == nil {
			return err
		}
		tickets, err := r.Tickets.ListByWorker(ctx, w.ID)
		if err != nil {
			return err
		}
		for _, t := range tickets {
			out = append(out, dto.FromTicket(t))
		}
		return nil
	})
	if err != nil {
		uc.degraded("tickets.list_for_worker", err)
		return []dto.ServiceResponse{}
	}
	return out
}

// UpdateStatus cambia el estado de una orden a partir del estado externo.
// Las políticas de fila limitan la escritura al técnico asignado o a un admin.
func (uc *TicketUseCase) UpdateStatus(ctx context.Context, s *domain.Session, id, estado string) error {
	if domain.ActorIDOf(s) == "" {
		return requireSession(domain.ErrUnauthorized)
	}
	status, err := ticket.InternalStatus(ticket.Estado(strings.TrimSpace(estado)))
	if err != nil {
		return domain.NewActionError(domain.ErrInvalidInput, "Estado de servicio inválido", err)
	}
	err = uc.store.Run(ctx, uc.gate.Resolve(ctx, s), func(r repository.Repositories) error {
		return r.Tickets.UpdateStatus(ctx, id, string(status))
	})
	if err != nil {
		return notFoundAs(storeError(err), "Servicio no encontrado")
	}
	uc.logger.Info().Str("ticket_id", id).Str("status", string(status)).Str("actor_id", s.UserID).Msg("estado de servicio actualizado")
	return nil
}
