// Package local proveedor de identidad propio: credenciales en la tabla identities,
// contraseñas con bcrypt y tokens de acceso firmados con el mismo secreto que verifica la API.
package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/conecta-api/internal/application/ports"
	"github.com/jhoicas/conecta-api/pkg/jwt"
)

var _ ports.IdentityProvider = (*Provider)(nil)

// Mensajes con el mismo texto que el proveedor alojado.
var (
	ErrEmailExists     = errors.New("A user with this email address has already been registered")
	ErrWeakPassword    = errors.New("Password should be at least 6 characters.")
	ErrInvalidEmail    = errors.New("Unable to validate email address: invalid format")
	ErrEmailNotConfirm = errors.New("Email not confirmed")
)

// Querier subconjunto de pgxpool.Pool / pgx.Tx que usa el proveedor.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TokenConfig emisión de tokens.
type TokenConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Provider implementación de IdentityProvider sobre PostgreSQL.
type Provider struct {
	q      Querier
	tokens TokenConfig
	cost   int
}

// NewProvider construye el proveedor local.
func NewProvider(q Querier, tokens TokenConfig) *Provider {
	return &Provider{q: q, tokens: tokens, cost: bcrypt.DefaultCost}
}

// WithCost cambia el costo de bcrypt (tests).
func (p *Provider) WithCost(cost int) *Provider {
	p.cost = cost
	return p
}

// CreateIdentity hashea la contraseña y persiste la identidad.
func (p *Provider) CreateIdentity(ctx context.Context, email, password string, emailConfirmed bool) (*ports.IdentityUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	var confirmedAt *time.Time
	if emailConfirmed {
		now := time.Now()
		confirmedAt = &now
	}
	id := uuid.NewString()
	_, err = p.q.Exec(ctx, `
		INSERT INTO identities (id, email, password_hash, email_confirmed_at)
		VALUES ($1, $2, $3, $4)`, id, email, string(hash), confirmedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}
	return &ports.IdentityUser{ID: id, Email: email}, nil
}

// DeleteIdentity elimina la identidad; inexistente no es error.
func (p *Provider) DeleteIdentity(ctx context.Context, id string) error {
	if _, err := p.q.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

// SignIn verifica la contraseña y emite un token de acceso.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*ports.AuthSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var (
		id          string
		hash        string
		confirmedAt *time.Time
	)
	err := p.q.QueryRow(ctx,
		`SELECT id, password_hash, email_confirmed_at FROM identities WHERE email = $1`, email,
	).Scan(&id, &hash, &confirmedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ports.ErrInvalidCredentials
	}
	if confirmedAt == nil {
		return nil, ErrEmailNotConfirm
	}
	token, exp, err := jwt.Generate(p.tokens.Secret, id, email, p.tokens.Issuer, p.tokens.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &ports.AuthSession{
		User:        ports.IdentityUser{ID: id, Email: email},
		AccessToken: token,
		ExpiresAt:   exp,
	}, nil
}

// SignOut no guarda sesiones: la revocación la hace la lista de tokens revocados.
func (p *Provider) SignOut(context.Context, string) error { return nil }
