package provisioning

import (
	"context"
	"errors"
	"strings"

	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
	"github.com/jhoicas/conecta-api/pkg/validation"
)

// RegisterCustomer alta de cliente hecha por un técnico o un admin (rol leído del perfil).
// El cliente queda registrado por el técnico del actor, si lo tiene. Con PlanID se crea una
// suscripción activa; un plan inexistente o inactivo no impide el alta.
func (s *Service) RegisterCustomer(ctx context.Context, sess *domain.Session, in dto.RegisterCustomerRequest) (out *dto.CustomerResponse, err error) {
	start := s.now()
	defer func() { s.observe(kindCustomer, start, err) }()

	if _, err := s.gate.Require(ctx, sess, entity.RoleWorker, entity.RoleAdmin); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, domain.NewActionError(domain.ErrUnauthorized, "No autorizado", err)
		}
		return nil, domain.NewActionError(domain.ErrForbidden, "Solo técnicos o administradores pueden registrar clientes", err)
	}
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, invalidInput(err)
	}
	email := in.Email

	profile, err := s.createAccount(ctx, email, in.Password, in.FullName, in.Phone, entity.RoleCustomer)
	if err != nil {
		return nil, err
	}

	registeredBy := s.actorWorkerID(ctx, sess.UserID)
	code := s.nextCode(ctx, "CUS", func(g repository.CodeGenerator) (string, error) { return g.CustomerCode(ctx) })
	customer := &entity.Customer{
		ProfileID:    profile.ID,
		CustomerCode: code,
		DNI:          optional(in.DNI),
		Address:      strings.TrimSpace(in.Address),
		City:         strings.TrimSpace(in.City),
		RegisteredBy: registeredBy,
		IsActive:     true,
	}
	var created *entity.Customer
	err = s.store.Run(ctx, domain.ServiceAccess(), func(r repository.Repositories) error {
		var err error
		created, err = r.Customers.Create(ctx, customer)
		return err
	})
	if err != nil {
		cerr := s.compensate(ctx, profile.ID, true)
		return nil, domain.NewActionError(domain.ErrCustomerCreation, "", errors.Join(err, cerr))
	}

	resp := dto.FromCustomer(created)
	resp.Profile = dto.SummaryOf(profile)
	if in.PlanID != "" {
		if sub := s.attachPlan(ctx, created.ID, in.PlanID); sub != nil {
			resp.Subscriptions = []dto.SubscriptionResponse{dto.FromSubscription(sub)}
		}
	}

	s.logger.Info().
		Str("profile_id", profile.ID).
		Str("customer_code", created.CustomerCode).
		Str("actor_id", sess.UserID).
		Msg("cliente registrado")
	return &resp, nil
}

// actorWorkerID id del técnico del actor leído con su nivel de usuario; nil si no es técnico.
func (s *Service) actorWorkerID(ctx context.Context, actorID string) *string {
	var id *string
	err := s.store.Run(ctx, domain.UserAccess(actorID), func(r repository.Repositories) error {
		w, err := r.Workers.GetByProfileID(ctx, actorID)
		if err != nil {
			return err
		}
		if w != nil {
			id = &w.ID
		}
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("actor_id", actorID).Msg("no se pudo leer el técnico del actor; cliente sin técnico")
		return nil
	}
	return id
}

// attachPlan crea la suscripción activa si el plan existe y está activo. Nunca falla el alta.
func (s *Service) attachPlan(ctx context.Context, customerID, planID string) *entity.Subscription {
	var sub *entity.Subscription
	err := s.store.Run(ctx, domain.ServiceAccess(), func(r repository.Repositories) error {
		plan, err := r.Plans.GetByID(ctx, planID)
		if err != nil {
			return err
		}
		if plan == nil || !plan.IsActive {
			s.logger.Warn().Str("plan_id", planID).Str("customer_id", customerID).Msg("plan inexistente o inactivo; cliente sin suscripción")
			return nil
		}
		sub, err = r.Subscriptions.Create(ctx, &entity.Subscription{
			CustomerID: customerID,
			PlanID:     plan.ID,
			Status:     entity.SubscriptionActive,
		})
		return err
	})
	if err != nil {
		s.logger.Error().Err(err).Str("plan_id", planID).Str("customer_id", customerID).Msg("no se pudo crear la suscripción")
		return nil
	}
	return sub
}
