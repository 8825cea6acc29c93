package provisioning

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
	"github.com/jhoicas/conecta-api/pkg/validation"
)

// RegisterWorker crea identidad, perfil con rol worker y registro de técnico.
// Errores: *domain.ActionError con Kind ErrInvalidInput, ErrIdentityCreation,
// ErrProfileCreation o ErrWorkerCreation. Salvo en el primer paso, un fallo deja
// la identidad y el perfil borrados.
func (s *Service) RegisterWorker(ctx context.Context, in dto.RegisterWorkerRequest) (out *dto.WorkerResponse, err error) {
	start := s.now()
	defer func() { s.observe(kindWorker, start, err) }()

	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, invalidInput(err)
	}
	email := in.Email

	profile, err := s.createAccount(ctx, email, in.Password, in.FullName, in.Phone, entity.RoleWorker)
	if err != nil {
		return nil, err
	}

	code := s.nextCode(ctx, "EMP", func(g repository.CodeGenerator) (string, error) { return g.EmployeeCode(ctx) })
	today := s.now()
	worker := &entity.Worker{
		ProfileID:    profile.ID,
		EmployeeCode: code,
		Department:   optional(in.Department),
		Position:     optional(in.Position),
		HireDate:     time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC),
		IsActive:     true,
	}
	var created *entity.Worker
	err = s.store.Run(ctx, domain.ServiceAccess(), func(r repository.Repositories) error {
		var err error
		created, err = r.Workers.Create(ctx, worker)
		return err
	})
	if err != nil {
		cerr := s.compensate(ctx, profile.ID, true)
		return nil, domain.NewActionError(domain.ErrWorkerCreation, "", errors.Join(err, cerr))
	}

	s.logger.Info().
		Str("profile_id", profile.ID).
		Str("employee_code", created.EmployeeCode).
		Msg("técnico registrado")

	resp := dto.FromWorker(created)
	resp.Profile = dto.SummaryOf(profile)
	return &resp, nil
}
