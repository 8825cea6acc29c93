// Package auth inicio y cierre de sesión y verificación de tokens de acceso.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/application/ports"
	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
	"github.com/jhoicas/conecta-api/pkg/jwt"
	"github.com/jhoicas/conecta-api/pkg/validation"
)

// JWTConfig secreto con el que se verifican los tokens de acceso.
type JWTConfig struct {
	Secret string
}

// AuthUseCase casos de uso de autenticación: login, logout, usuario actual y sesión.
type AuthUseCase struct {
	idp      ports.IdentityProvider
	store    repository.Store
	denylist ports.TokenDenylist
	jwtCfg   JWTConfig
	logger   zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth. denylist puede ser nil (sin revocación local).
func NewAuthUseCase(idp ports.IdentityProvider, store repository.Store, denylist ports.TokenDenylist, jwtCfg JWTConfig, logger zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{idp: idp, store: store, denylist: denylist, jwtCfg: jwtCfg, logger: logger}
}

// Login valida credenciales en el proveedor de identidad y devuelve el token con el perfil.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, domain.NewActionError(domain.ErrInvalidInput, err.Error(), err)
	}

	sess, err := uc.idp.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidCredentials) {
			return nil, domain.NewActionError(domain.ErrUnauthorized, "Email o contraseña incorrectos", err)
		}
		return nil, domain.NewActionError(domain.ErrStore, "No se pudo iniciar sesión", err)
	}

	profile := uc.profileOf(ctx, sess.User.ID)
	if profile == nil {
		uc.logger.Warn().Str("user_id", sess.User.ID).Msg("login de una identidad sin perfil")
	}
	return &dto.LoginResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
		User:         dto.FromProfile(profile),
	}, nil
}

// Logout revoca el token hasta su vencimiento y cierra la sesión en el proveedor.
// El cierre remoto es best-effort; la revocación local no.
func (uc *AuthUseCase) Logout(ctx context.Context, s *domain.Session) error {
	if s == nil || s.AccessToken == "" {
		return domain.NewActionError(domain.ErrUnauthorized, "No autorizado", domain.ErrUnauthorized)
	}
	if uc.denylist != nil {
		if err := uc.denylist.Revoke(ctx, s.AccessToken, time.Until(s.ExpiresAt)); err != nil {
			return domain.NewActionError(domain.ErrStore, "No se pudo cerrar la sesión", err)
		}
	}
	if err := uc.idp.SignOut(ctx, s.AccessToken); err != nil {
		uc.logger.Warn().Err(err).Str("user_id", s.UserID).Msg("el proveedor de identidad no cerró la sesión")
	}
	return nil
}

// CurrentUser perfil del actor; nil sin sesión o si no se puede leer.
func (uc *AuthUseCase) CurrentUser(ctx context.Context, s *domain.Session) *dto.ProfileResponse {
	if domain.ActorIDOf(s) == "" {
		return nil
	}
	return dto.FromProfile(uc.profileOf(ctx, s.UserID))
}

// Session verifica firma, vencimiento y revocación del token. Si no se puede consultar
// la lista de revocados el token se rechaza.
func (uc *AuthUseCase) Session(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return nil, errors.Join(domain.ErrUnauthorized, err)
	}
	if uc.denylist != nil {
		revoked, err := uc.denylist.IsRevoked(ctx, token)
		if err != nil {
			uc.logger.Error().Err(err).Msg("no se pudo consultar la lista de tokens revocados")
			return nil, errors.Join(domain.ErrUnauthorized, err)
		}
		if revoked {
			return nil, domain.ErrUnauthorized
		}
	}
	s := &domain.Session{UserID: claims.Subject, Email: claims.Email, AccessToken: token}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// profileOf lee el perfil con el nivel de usuario de id.
func (uc *AuthUseCase) profileOf(ctx context.Context, id string) *entity.Profile {
	var p *entity.Profile
	err := uc.store.Run(ctx, domain.UserAccess(id), func(r repository.Repositories) error {
		var err error
		p, err = r.Profiles.GetByID(ctx, id)
		return err
	})
	if err != nil {
		uc.logger.Error().Err(err).Str("user_id", id).Msg("no se pudo leer el perfil")
		return nil
	}
	return p
}
