package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/conecta-api/internal/application/access"
	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
	"github.com/jhoicas/conecta-api/pkg/metrics"
	"github.com/jhoicas/conecta-api/pkg/validation"
)

// WorkerUseCase lecturas y edición de técnicos.
type WorkerUseCase struct {
	reader
}

// NewWorkerUseCase construye el caso de uso. m puede ser nil.
func NewWorkerUseCase(store repository.Store, gate *access.Gate, m *metrics.ReadMetrics, logger zerolog.Logger) *WorkerUseCase {
	return &WorkerUseCase{reader{store: store, gate: gate, metrics: m, logger: logger}}
}

// List técnicos visibles para el actor con su perfil, del más reciente al más antiguo.
func (uc *WorkerUseCase) List(ctx context.Context, s *domain.Session) []dto.WorkerResponse {
	return uc.list(ctx, s, repository.WorkerFilter{}, "workers.list")
}

// ListByPosition técnicos activos con ese puesto.
func (uc *WorkerUseCase) ListByPosition(ctx context.Context, s *domain.Session, position string) []dto.WorkerResponse {
	position = strings.TrimSpace(position)
	if position == "" {
		return []dto.WorkerResponse{}
	}
	return uc.list(ctx, s, repository.WorkerFilter{Position: position, ActiveOnly: true}, "workers.list_by_position")
}

func (uc *WorkerUseCase) list(ctx context.Context, s *domain.Session, f repository.WorkerFilter, query string) []dto.WorkerResponse {
	out := []dto.WorkerResponse{}
	err := uc.store.Run(ctx, uc.gate.Resolve(ctx, s), func(r repository.Repositories) error {
		workers, err := r.Workers.List(ctx, f)
		if err != nil {
			return err
		}
		out = uc.joinWorkers(ctx, r, workers, query)
		return nil
	})
	if err != nil {
		uc.degraded(query, err)
		return []dto.WorkerResponse{}
	}
	return out
}

// Update cambia departamento, puesto o estado de un técnico. Solo admin.
func (uc *WorkerUseCase) Update(ctx context.Context, s *domain.Session, id string, in dto.UpdateWorkerRequest) (*dto.WorkerResponse, error) {
	ac, err := uc.gate.Require(ctx, s, entity.RoleAdmin)
	if err != nil {
		return nil, requireSession(err)
	}
	if err := validation.Struct(in); err != nil {
		return nil, domain.NewActionError(domain.ErrInvalidInput, err.Error(), err)
	}
	patch := entity.WorkerPatch{
		Department: trimmed(in.Department),
		Position:   trimmed(in.Position),
		IsActive:   in.IsActive,
	}
	if patch.IsEmpty() {
		return nil, domain.NewActionError(domain.ErrInvalidInput, "No hay cambios para guardar", nil)
	}

	var updated *entity.Worker
	err = uc.store.Run(ctx, ac, func(r repository.Repositories) error {
		var err error
		updated, err = r.Workers.Update(ctx, id, patch)
		return err
	})
	if err != nil {
		return nil, notFoundAs(storeError(err), "Técnico no encontrado")
	}
	resp := dto.FromWorker(updated)
	return &resp, nil
}
