package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/conecta-api/internal/application/ports"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
)

var _ ports.IdentityProvider = (*IdentityProvider)(nil)

// ErrEmailTaken mismo texto que devuelve Supabase Auth para un email registrado.
var ErrEmailTaken = errors.New("A user with this email address has already been registered")

// IdentityProvider proveedor de identidad en memoria. Registra altas, bajas y cierres de sesión.
type IdentityProvider struct {
	mu        sync.Mutex
	users     map[string]identity // por id
	seq       int
	Created   []string
	Deleted   []string
	SignedOut []string

	// CreateErr / DeleteErr / SignOutErr fuerzan el fallo de cada operación.
	CreateErr  error
	DeleteErr  error
	SignOutErr error
}

type identity struct {
	email    string
	password string
}

// NewIdentityProvider crea un proveedor vacío.
func NewIdentityProvider() *IdentityProvider {
	return &IdentityProvider{users: map[string]identity{}}
}

// Seed registra una identidad existente con id fijo (ej. el id de un perfil sembrado).
func (p *IdentityProvider) Seed(id, email, password string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[id] = identity{email: strings.ToLower(email), password: password}
}

// Exists indica si la identidad sigue existiendo.
func (p *IdentityProvider) Exists(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.users[id]
	return ok
}

// Count número de identidades.
func (p *IdentityProvider) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.users)
}

func (p *IdentityProvider) SignIn(_ context.Context, email, password string) (*ports.AuthSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, u := range p.users {
		if u.email == strings.ToLower(email) && u.password == password {
			return &ports.AuthSession{
				User:        ports.IdentityUser{ID: id, Email: u.email},
				AccessToken: "token-" + id,
				ExpiresAt:   time.Now().Add(time.Hour),
			}, nil
		}
	}
	return nil, ports.ErrInvalidCredentials
}

func (p *IdentityProvider) CreateIdentity(_ context.Context, email, password string, _ bool) (*ports.IdentityUser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.CreateErr != nil {
		return nil, p.CreateErr
	}
	email = strings.ToLower(email)
	for _, u := range p.users {
		if u.email == email {
			return nil, ErrEmailTaken
		}
	}
	p.seq++
	id := fmt.Sprintf("idn-%04d", p.seq)
	p.users[id] = identity{email: email, password: password}
	p.Created = append(p.Created, id)
	return &ports.IdentityUser{ID: id, Email: email}, nil
}

func (p *IdentityProvider) DeleteIdentity(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.DeleteErr != nil {
		return p.DeleteErr
	}
	delete(p.users, id)
	p.Deleted = append(p.Deleted, id)
	return nil
}

func (p *IdentityProvider) SignOut(_ context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SignedOut = append(p.SignedOut, accessToken)
	return p.SignOutErr
}

// PlanCache caché de planes en memoria.
type PlanCache struct {
	mu     sync.Mutex
	plans  []*entity.Plan
	hit    bool
	GetErr error
	Sets   int
}

var _ ports.PlanCache = (*PlanCache)(nil)

func (c *PlanCache) GetActivePlans(context.Context) ([]*entity.Plan, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return nil, false, c.GetErr
	}
	return c.plans, c.hit, nil
}

func (c *PlanCache) SetActivePlans(_ context.Context, plans []*entity.Plan) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans, c.hit = plans, true
	c.Sets++
	return nil
}

// Denylist tokens revocados en memoria.
type Denylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

var _ ports.TokenDenylist = (*Denylist)(nil)

func (d *Denylist) Revoke(_ context.Context, token string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.revoked == nil {
		d.revoked = map[string]time.Duration{}
	}
	d.revoked[token] = ttl
	return nil
}

func (d *Denylist) IsRevoked(_ context.Context, token string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[token]
	return ok, nil
}

// TTL devuelve el ttl con el que se revocó token.
func (d *Denylist) TTL(token string) (time.Duration, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ttl, ok := d.revoked[token]
	return ttl, ok
}
