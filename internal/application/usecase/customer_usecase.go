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

// CustomerUseCase lecturas agregadas y acciones sobre clientes.
type CustomerUseCase struct {
	reader
}

// NewCustomerUseCase construye el caso de uso. m puede ser nil.
func NewCustomerUseCase(store repository.Store, gate *access.Gate, m *metrics.ReadMetrics, logger zerolog.Logger) *CustomerUseCase {
	return &CustomerUseCase{reader{store: store, gate: gate, metrics: m, logger: logger}}
}

// List clientes visibles para el actor, del más reciente al más antiguo, con perfil y suscripciones.
// Un admin ve todos; el resto, lo que permitan las políticas de fila.
func (uc *CustomerUseCase) List(ctx context.Context, s *domain.Session) []dto.CustomerResponse {
	out := []dto.CustomerResponse{}
	err := uc.store.Run(ctx, uc.gate.Resolve(ctx, s), func(r repository.Repositories) error {
		customers, err := r.Customers.List(ctx, repository.CustomerFilter{})
		if err != nil {
			return err
		}
		out = uc.joinCustomers(ctx, r, customers, false, "customers.list")
		return nil
	})
	if err != nil {
		uc.degraded("customers.list", err)
		return []dto.CustomerResponse{}
	}
	return out
}

// GetByID cliente con su perfil; nil si no existe, no es visible o falla la lectura.
func (uc *CustomerUseCase) GetByID(ctx context.Context, s *domain.Session, id string) *dto.CustomerResponse {
	var out *dto.CustomerResponse
	err := uc.store.Run(ctx, uc.gate.Resolve(ctx, s), func(r repository.Repositories) error {
		c, err := r.Customers.GetByID(ctx, id)
		if err != nil || c == nil {
			return err
		}
		p, err := r.Profiles.GetByID(ctx, c.ProfileID)
		if err != nil {
			return err
		}
		resp := dto.FromCustomer(c)
		resp.Profile = dto.SummaryOf(p)
		out = &resp
		return nil
	})
	if err != nil {
		uc.degraded("customers.get", err)
		return nil
	}
	return out
}

// Update aplica los campos presentes en in.
func (uc *CustomerUseCase) Update(ctx context.Context, s *domain.Session, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	if domain.ActorIDOf(s) == "" {
		return nil, requireSession(domain.ErrUnauthorized)
	}
	if err := validation.Struct(in); err != nil {
		return nil, domain.NewActionError(domain.ErrInvalidInput, err.Error(), err)
	}
	patch := entity.CustomerPatch{
		DNI:        trimmed(in.DNI),
		Address:    trimmed(in.Address),
		City:       trimmed(in.City),
		PostalCode: trimmed(in.PostalCode),
		IsActive:   in.IsActive,
	}
	if patch.IsEmpty() {
		return nil, domain.NewActionError(domain.ErrInvalidInput, "No hay cambios para guardar", nil)
	}

	var updated *entity.Customer
	err := uc.store.Run(ctx, uc.gate.Resolve(ctx, s), func(r repository.Repositories) error {
		var err error
		updated, err = r.Customers.Update(ctx, id, patch)
		return err
	})
	if err != nil {
		return nil, notFoundAs(storeError(err), "Cliente no encontrado")
	}
	resp := dto.FromCustomer(updated)
	return &resp, nil
}

// Delete borra el cliente; sus suscripciones caen en cascada.
func (uc *CustomerUseCase) Delete(ctx context.Context, s *domain.Session, id string) error {
	if domain.ActorIDOf(s) == "" {
		return requireSession(domain.ErrUnauthorized)
	}
	err := uc.store.Run(ctx, uc.gate.Resolve(ctx, s), func(r repository.Repositories) error {
		return r.Customers.Delete(ctx, id)
	})
	if err != nil {
		return notFoundAs(storeError(err), "Cliente no encontrado")
	}
	uc.logger.Info().Str("customer_id", id).Str("actor_id", s.UserID).Msg("cliente eliminado")
	return nil
}

// ListForWorker clientes registrados por el técnico de profileID, con perfil y
// suscripciones con su plan. Vacío si el perfil no tiene técnico.
func (uc *CustomerUseCase) ListForWorker(ctx context.Context, s *domain.Session, profileID string) []dto.CustomerResponse {
	out := []dto.CustomerResponse{}
	err := uc.store.Run(ctx, uc.gate.Resolve(ctx, s), func(r repository.Repositories) error {
		w, err := r.Workers.GetByProfileID(ctx, profileID)
		if err != nil || w == nil {
			return err
		}
		customers, err := r.Customers.List(ctx, repository.CustomerFilter{RegisteredBy: w.ID})
		if err != nil {
			return err
		}
		out = uc.joinCustomers(ctx, r, customers, true, "customers.list_for_worker")
		return nil
	})
	if err != nil {
		uc.degraded("customers.list_for_worker", err)
		return []dto.CustomerResponse{}
	}
	return out
}

// ListServedByWorker "mis clientes" del técnico de profileID: los que registró más los
// que aparecen en sus órdenes, sin repetir, del más reciente al más antiguo y con su plan vigente.
func (uc *CustomerUseCase) ListServedByWorker(ctx context.Context, s *domain.Session, profileID string) []dto.WorkerCustomerDTO {
	const query = "customers.served_by_worker"
	out := []dto.WorkerCustomerDTO{}
	err := uc.store.Run(ctx, uc.gate.Resolve(ctx, s), func(r repository.Repositories) error {
		w, err := r.Workers.GetByProfileID(ctx, profileID)
		if err != nil || w == nil {
			return err
		}
		customers, err := r.Customers.List(ctx, repository.CustomerFilter{RegisteredBy: w.ID})
		if err != nil {
			return err
		}
		tickets, err := r.Tickets.ListByWorker(ctx, w.ID)
		if err != nil {
			return err
		}
		known := indexBy(customers, customerID)
		var extra []string
		for _, t := range tickets {
			if t.CustomerID == nil {
				continue
			}
			if _, ok := known[*t.CustomerID]; !ok {
				extra = append(extra, *t.CustomerID)
			}
		}
		if extra = unique(extra); len(extra) > 0 {
			more, err := r.Customers.ListByIDs(ctx, extra)
			if err != nil {
				return err
			}
			customers = append(customers, more...)
			sortNewestFirst(customers, customerCreated)
		}
		if len(customers) == 0 {
			return nil
		}

		profiles := uc.profilesOf(ctx, r, keysOf(customers, customerProfileID), query)
		_, subsByCustomer := uc.subscriptionsOf(ctx, r, keysOf(customers, customerID), query)
		latest := make(map[string]*entity.Subscription, len(subsByCustomer))
		var planIDs []string
		for id, subs := range subsByCustomer {
			latest[id] = subs[0]
			planIDs = append(planIDs, subs[0].PlanID)
		}
		plans := uc.plansOf(ctx, r, unique(planIDs), query)

		out = make([]dto.WorkerCustomerDTO, 0, len(customers))
		for _, c := range customers {
			item := dto.WorkerCustomerDTO{
				ID:           c.ID,
				ProfileID:    c.ProfileID,
				CustomerCode: c.CustomerCode,
				RegisteredBy: c.RegisteredBy,
				Profile:      dto.SummaryOf(profiles[c.ProfileID]),
			}
			if sub := latest[c.ID]; sub != nil {
				item.Plan = dto.PlanSummaryOf(plans[sub.PlanID])
			}
			out = append(out, item)
		}
		return nil
	})
	if err != nil {
		uc.degraded(query, err)
		return []dto.WorkerCustomerDTO{}
	}
	return out
}

// CurrentPlan plan de la suscripción más reciente del cliente de profileID.
// nil si no hay cliente, suscripción o plan, o si falla la lectura.
func (uc *CustomerUseCase) CurrentPlan(ctx context.Context, s *domain.Session, profileID string) *dto.PlanResponse {
	var plan *entity.Plan
	err := uc.store.Run(ctx, uc.gate.Resolve(ctx, s), func(r repository.Repositories) error {
		c, err := r.Customers.GetByProfileID(ctx, profileID)
		if err != nil || c == nil {
			return err
		}
		sub, err := r.Subscriptions.LatestByCustomer(ctx, c.ID)
		if err != nil || sub == nil || sub.PlanID == "" {
			return err
		}
		plan, err = r.Plans.GetByID(ctx, sub.PlanID)
		return err
	})
	if err != nil {
		uc.degraded("customers.current_plan", err)
		return nil
	}
	return dto.FromPlan(plan)
}

// AssignToWorker asigna el cliente con email al técnico de workerProfileID. Solo el propio
// técnico o un admin; la escritura se hace con el nivel de servicio.
func (uc *CustomerUseCase) AssignToWorker(ctx context.Context, s *domain.Session, email, workerProfileID string) error {
	ac, err := uc.gate.Require(ctx, s)
	if err != nil {
		return requireSession(err)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	workerProfileID = strings.TrimSpace(workerProfileID)
	if email == "" || workerProfileID == "" {
		return domain.NewActionError(domain.ErrInvalidInput, "Datos incompletos", nil)
	}
	if err := validation.Struct(dto.AssignCustomerRequest{Email: email}); err != nil {
		return domain.NewActionError(domain.ErrInvalidInput, "Email inválido", err)
	}
	if ac.Role != entity.RoleAdmin && ac.ActorID != workerProfileID {
		return domain.NewActionError(domain.ErrForbidden, "Solo puede asignarse clientes a sí mismo", nil)
	}

	var customerID string
	err = uc.store.Run(ctx, domain.ServiceAccess(), func(r repository.Repositories) error {
		w, err := r.Workers.GetByProfileID(ctx, workerProfileID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.NewActionError(domain.ErrNotFound, "Técnico no encontrado", nil)
		}
		p, err := r.Profiles.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NewActionError(domain.ErrNotFound, "Perfil de cliente no encontrado", nil)
		}
		c, err := r.Customers.GetByProfileID(ctx, p.ID)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.NewActionError(domain.ErrNotFound, "Cliente no encontrado", nil)
		}
		customerID = c.ID
		return r.Customers.SetRegisteredBy(ctx, c.ID, w.ID)
	})
	if err != nil {
		return storeError(err)
	}
	uc.logger.Info().
		Str("customer_id", customerID).
		Str("worker_profile_id", workerProfileID).
		Str("actor_id", ac.ActorID).
		Msg("cliente asignado a técnico")
	return nil
}

// notFoundAs cambia el mensaje genérico de un ErrNotFound por msg.
func notFoundAs(err error, msg string) error {
	if ae, ok := err.(*domain.ActionError); ok && ae.Kind == domain.ErrNotFound {
		return domain.NewActionError(domain.ErrNotFound, msg, ae.Err)
	}
	return err
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
