package access_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-api/internal/application/access"
	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/testutil"
)

func session(id string) *domain.Session { return &domain.Session{UserID: id} }

func TestResolve_SinSesionEsAnonimo(t *testing.T) {
	store := testutil.NewStore()
	g := access.NewGate(store, zerolog.Nop())

	ac := g.Resolve(context.Background(), nil)
	assert.Equal(t, domain.TierUser, ac.Tier)
	assert.True(t, ac.IsAnonymous())
	assert.Empty(t, store.Accesses(), "sin sesión no se consulta el perfil")
}

func TestResolve_AdminObtieneNivelServicio(t *testing.T) {
	store := testutil.NewStore()
	admin := store.AddProfile(entity.RoleAdmin, "admin@conecta.pe", "Admin")
	g := access.NewGate(store, zerolog.Nop())

	ac := g.Resolve(context.Background(), session(admin.ID))
	assert.Equal(t, domain.TierService, ac.Tier)
	assert.Equal(t, entity.RoleAdmin, ac.Role)
	assert.Equal(t, admin.ID, ac.ActorID)

	// La lectura del rol se hizo con el nivel de usuario del propio actor.
	require.Len(t, store.Accesses(), 1)
	assert.Equal(t, domain.UserAccess(admin.ID), store.Accesses()[0])
}

func TestResolve_TecnicoSeQuedaEnNivelUsuario(t *testing.T) {
	store := testutil.NewStore()
	w := store.AddProfile(entity.RoleWorker, "tec@conecta.pe", "Técnico")
	g := access.NewGate(store, zerolog.Nop())

	ac := g.Resolve(context.Background(), session(w.ID))
	assert.Equal(t, domain.TierUser, ac.Tier)
	assert.Equal(t, entity.RoleWorker, ac.Role)
}

func TestResolve_FallaCerrado(t *testing.T) {
	store := testutil.NewStore()
	admin := store.AddProfile(entity.RoleAdmin, "admin@conecta.pe", "Admin")
	store.FailOn("profiles.GetByID", errors.New("timeout"))
	g := access.NewGate(store, zerolog.Nop())

	ac := g.Resolve(context.Background(), session(admin.ID))
	assert.Equal(t, domain.TierUser, ac.Tier, "un error al leer el perfil nunca eleva el nivel")
	assert.Empty(t, ac.Role)
}

func TestResolve_PerfilInexistente(t *testing.T) {
	g := access.NewGate(testutil.NewStore(), zerolog.Nop())

	ac := g.Resolve(context.Background(), session("desconocido"))
	assert.Equal(t, domain.TierUser, ac.Tier)
	assert.Empty(t, ac.Role)
}

func TestRequire(t *testing.T) {
	store := testutil.NewStore()
	admin := store.AddProfile(entity.RoleAdmin, "admin@conecta.pe", "Admin")
	cust := store.AddProfile(entity.RoleCustomer, "cli@conecta.pe", "Cliente")
	g := access.NewGate(store, zerolog.Nop())
	ctx := context.Background()

	_, err := g.Require(ctx, nil, entity.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = g.Require(ctx, session(cust.ID), entity.RoleAdmin, entity.RoleWorker)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	ac, err := g.Require(ctx, session(admin.ID), entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.TierService, ac.Tier)

	_, err = g.Require(ctx, session(cust.ID))
	assert.NoError(t, err, "sin roles basta con tener sesión")
}
