// Package provisioning alta de técnicos y clientes: identidad, perfil y registro del rol.
// Los pasos se confirman por separado; si uno falla se deshacen los anteriores en orden inverso.
package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/conecta-api/internal/application/access"
	"github.com/jhoicas/conecta-api/internal/application/ports"
	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
	"github.com/jhoicas/conecta-api/pkg/metrics"
)

const (
	kindWorker   = "worker"
	kindCustomer = "customer"
)

// Service flujos de alta de cuentas.
type Service struct {
	store   repository.Store
	idp     ports.IdentityProvider
	gate    *access.Gate
	metrics *metrics.ProvisioningMetrics
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService construye el servicio de alta. m puede ser nil.
func NewService(store repository.Store, idp ports.IdentityProvider, gate *access.Gate, m *metrics.ProvisioningMetrics, logger zerolog.Logger) *Service {
	return &Service{store: store, idp: idp, gate: gate, metrics: m, logger: logger, now: time.Now}
}

// createAccount pasos 1 y 2 comunes: identidad con email confirmado y perfil con role.
func (s *Service) createAccount(ctx context.Context, email, password, fullName, phone, role string) (*entity.Profile, error) {
	ident, err := s.idp.CreateIdentity(ctx, email, password, true)
	if err != nil {
		return nil, domain.NewActionError(domain.ErrIdentityCreation, err.Error(), err)
	}

	profile := &entity.Profile{
		ID:       ident.ID,
		Email:    email,
		FullName: strings.TrimSpace(fullName),
		Phone:    optional(phone),
		Role:     role,
	}
	err = s.store.Run(ctx, domain.ServiceAccess(), func(r repository.Repositories) error {
		return r.Profiles.Create(ctx, profile)
	})
	if err != nil {
		cerr := s.compensate(ctx, ident.ID, false)
		msg := ""
		if errors.Is(err, domain.ErrDuplicate) {
			msg = "Ya existe un perfil con ese email"
		}
		return nil, domain.NewActionError(domain.ErrProfileCreation, msg, errors.Join(err, cerr))
	}
	return profile, nil
}

// compensate borra el perfil (si se creó) y luego la identidad. Usa un contexto sin cancelación
// para que una petición abortada no deje la limpieza a medias.
func (s *Service) compensate(ctx context.Context, identityID string, profileCreated bool) error {
	ctx = context.WithoutCancel(ctx)
	log := s.logger.With().Str("identity_id", identityID).Logger()
	var errs []error

	if profileCreated {
		err := s.store.Run(ctx, domain.ServiceAccess(), func(r repository.Repositories) error {
			return r.Profiles.Delete(ctx, identityID)
		})
		s.recordCompensation(log, "profile", err)
		if err != nil {
			errs = append(errs, fmt.Errorf("compensar perfil: %w", err))
		}
	}

	err := s.idp.DeleteIdentity(ctx, identityID)
	s.recordCompensation(log, "identity", err)
	if err != nil {
		errs = append(errs, fmt.Errorf("compensar identidad: %w", err))
	}
	return errors.Join(errs...)
}

func (s *Service) recordCompensation(log zerolog.Logger, step string, err error) {
	if err != nil {
		s.metrics.IncCompensation(step, metrics.OutcomeFailure)
		log.Error().Err(err).Str("step", step).Msg("falló la compensación; quedan registros huérfanos")
		return
	}
	s.metrics.IncCompensation(step, metrics.OutcomeSuccess)
	log.Warn().Str("step", step).Msg("paso compensado tras un fallo de alta")
}

// nextCode pide un código al generador de la base; si falla o viene vacío usa PREFIJO-<unix ms>.
func (s *Service) nextCode(ctx context.Context, prefix string, gen func(repository.CodeGenerator) (string, error)) string {
	var code string
	err := s.store.Run(ctx, domain.ServiceAccess(), func(r repository.Repositories) error {
		var err error
		code, err = gen(r.Codes)
		return err
	})
	if err != nil || code == "" {
		s.logger.Warn().Err(err).Str("prefix", prefix).Msg("generador de códigos no disponible; se usa código por fecha")
		return fmt.Sprintf("%s-%d", prefix, s.now().UnixMilli())
	}
	return code
}

func (s *Service) observe(kind string, start time.Time, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	s.metrics.ObserveAccount(kind, outcome, time.Since(start))
}

func invalidInput(err error) error {
	return domain.NewActionError(domain.ErrInvalidInput, err.Error(), err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
