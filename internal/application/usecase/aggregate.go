package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
)

func customerID(c *entity.Customer) string { return c.ID }
func customerProfileID(c *entity.Customer) string { return c.ProfileID }
func workerProfileID(w *entity.Worker) string { return w.ProfileID }
func profileID(p *entity.Profile) string { return p.ID }
func planID(p *entity.Plan) string { return p.ID }
func subCustomerID(s *entity.Subscription) string { return s.CustomerID }
func subPlanID(s *entity.Subscription) string { return s.PlanID }
func customerCreated(c *entity.Customer) time.Time { return c.CreatedAt }

// profilesOf perfiles de ids en una consulta. Un fallo deja el mapa vacío y, por ir en
// un savepoint, no invalida las consultas siguientes de la misma transacción.
func (rd reader) profilesOf(ctx context.Context, r repository.Repositories, ids []string, query string) map[string]*entity.Profile {
	if len(ids) == 0 {
		return nil
	}
	var list []*entity.Profile
	err := r.Isolated(ctx, func(r repository.Repositories) error {
		var err error
		list, err = r.Profiles.ListByIDs(ctx, ids)
		return err
	})
	if err != nil {
		rd.degraded(query+".profiles", err)
		return nil
	}
	return indexBy(list, profileID)
}

// plansOf planes de ids en una consulta. Un fallo deja el mapa vacío.
func (rd reader) plansOf(ctx context.Context, r repository.Repositories, ids []string, query string) map[string]*entity.Plan {
	if len(ids) == 0 {
		return nil
	}
	var list []*entity.Plan
	err := r.Isolated(ctx, func(r repository.Repositories) error {
		var err error
		list, err = r.Plans.ListByIDs(ctx, ids)
		return err
	})
	if err != nil {
		rd.degraded(query+".plans", err)
		return nil
	}
	return indexBy(list, planID)
}

// subscriptionsOf suscripciones de customerIDs agrupadas por cliente, de la más reciente a la más antigua.
func (rd reader) subscriptionsOf(ctx context.Context, r repository.Repositories, customerIDs []string, query string) ([]*entity.Subscription, map[string][]*entity.Subscription) {
	if len(customerIDs) == 0 {
		return nil, nil
	}
	var list []*entity.Subscription
	err := r.Isolated(ctx, func(r repository.Repositories) error {
		var err error
		list, err = r.Subscriptions.ListByCustomerIDs(ctx, customerIDs)
		return err
	})
	if err != nil {
		rd.degraded(query+".subscriptions", err)
		return nil, nil
	}
	return list, groupBy(list, subCustomerID)
}

// joinCustomers adjunta perfil y suscripciones a cada cliente con una consulta por tabla
// relacionada. Con withPlans cada suscripción lleva su plan. El orden de customers se mantiene.
func (rd reader) joinCustomers(ctx context.Context, r repository.Repositories, customers []*entity.Customer, withPlans bool, query string) []dto.CustomerResponse {
	out := make([]dto.CustomerResponse, 0, len(customers))
	if len(customers) == 0 {
		return out
	}

	profiles := rd.profilesOf(ctx, r, keysOf(customers, customerProfileID), query)
	subs, subsByCustomer := rd.subscriptionsOf(ctx, r, keysOf(customers, customerID), query)
	var plans map[string]*entity.Plan
	if withPlans {
		plans = rd.plansOf(ctx, r, keysOf(subs, subPlanID), query)
	}

	for _, c := range customers {
		resp := dto.FromCustomer(c)
		resp.Profile = dto.SummaryOf(profiles[c.ProfileID])
		resp.Subscriptions = make([]dto.SubscriptionResponse, 0, len(subsByCustomer[c.ID]))
		for _, s := range subsByCustomer[c.ID] {
			sr := dto.FromSubscription(s)
			if withPlans {
				sr.Plan = dto.PlanSummaryOf(plans[s.PlanID])
			}
			resp.Subscriptions = append(resp.Subscriptions, sr)
		}
		out = append(out, resp)
	}
	return out
}

// joinWorkers adjunta el perfil a cada técnico.
func (rd reader) joinWorkers(ctx context.Context, r repository.Repositories, workers []*entity.Worker, query string) []dto.WorkerResponse {
	out := make([]dto.WorkerResponse, 0, len(workers))
	if len(workers) == 0 {
		return out
	}
	profiles := rd.profilesOf(ctx, r, keysOf(workers, workerProfileID), query)
	for _, w := range workers {
		resp := dto.FromWorker(w)
		resp.Profile = dto.SummaryOf(profiles[w.ProfileID])
		out = append(out, resp)
	}
	return out
}
