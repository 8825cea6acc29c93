package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/application/ports"
	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
	"github.com/jhoicas/conecta-api/pkg/metrics"
)

// PlanUseCase catálogo de planes activos.
type PlanUseCase struct {
	reader
	cache ports.PlanCache
}

// NewPlanUseCase construye el caso de uso. cache y m pueden ser nil.
func NewPlanUseCase(store repository.Store, cache ports.PlanCache, m *metrics.ReadMetrics, logger zerolog.Logger) *PlanUseCase {
	return &PlanUseCase{reader: reader{store: store, metrics: m, logger: logger}, cache: cache}
}

// ListActive planes activos por precio ascendente. Los planes activos son públicos, así que
// basta el nivel de usuario del llamador y la respuesta se comparte en caché.
func (uc *PlanUseCase) ListActive(ctx context.Context, s *domain.Session) []dto.PlanResponse {
	if uc.cache != nil {
		plans, ok, err := uc.cache.GetActivePlans(ctx)
		if err != nil {
			uc.logger.Warn().Err(err).Msg("caché de planes no disponible")
		} else if ok {
			return toPlanResponses(plans)
		}
	}

	var plans []*entity.Plan
	err := uc.store.Run(ctx, domain.UserAccess(domain.ActorIDOf(s)), func(r repository.Repositories) error {
		var err error
		plans, err = r.Plans.ListActive(ctx)
		return err
	})
	if err != nil {
		uc.degraded("plans.list_active", err)
		return []dto.PlanResponse{}
	}

	if uc.cache != nil {
		if err := uc.cache.SetActivePlans(ctx, plans); err != nil {
			uc.logger.Warn().Err(err).Msg("no se pudo guardar la caché de planes")
		}
	}
	return toPlanResponses(plans)
}

func toPlanResponses(plans []*entity.Plan) []dto.PlanResponse {
	out := make([]dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, *dto.FromPlan(p))
	}
	return out
}
