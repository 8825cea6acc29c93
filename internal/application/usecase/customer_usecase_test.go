package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-api/internal/application/access"
	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/application/usecase"
	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/testutil"
	"github.com/jhoicas/conecta-api/pkg/metrics"
)

func session(id string) *domain.Session { return &domain.Session{UserID: id} }

func strPtr(s string) *string { return &s }

// escenario: un admin, dos técnicos y tres clientes (dos del técnico A, uno del B).
type world struct {
	store            *testutil.Store
	admin            *entity.Profile
	techA, techB     *entity.Profile
	workerA, workerB *entity.Worker
	c1, c2, c3       *entity.Customer
	p1, p2, p3       *entity.Profile
	basic, plus      *entity.Plan
}

func newWorld() *world {
	s := testutil.NewStore()
	w := &world{store: s}
	w.admin = s.AddProfile(entity.RoleAdmin, "admin@conecta.pe", "Admin")
	w.techA = s.AddProfile(entity.RoleWorker, "ana@conecta.pe", "Ana Torres")
	w.techB = s.AddProfile(entity.RoleWorker, "beto@conecta.pe", "Beto Ruiz")
	w.workerA = s.AddWorker(w.techA.ID, "Instalador")
	w.workerB = s.AddWorker(w.techB.ID, "Soporte")
	w.basic = s.AddPlan("Hogar Básico", "59.90", true)
	w.plus = s.AddPlan("Hogar Plus", "89.90", true)

	w.p1 = s.AddProfile(entity.RoleCustomer, "c1@correo.pe", "Cliente Uno")
	w.c1 = s.AddCustomer(w.p1.ID, w.workerA.ID)
	w.p2 = s.AddProfile(entity.RoleCustomer, "c2@correo.pe", "Cliente Dos")
	w.c2 = s.AddCustomer(w.p2.ID, w.workerB.ID)
	w.p3 = s.AddProfile(entity.RoleCustomer, "c3@correo.pe", "Cliente Tres")
	w.c3 = s.AddCustomer(w.p3.ID, w.workerA.ID)

	s.AddSubscription(w.c1.ID, w.basic.ID)
	s.AddSubscription(w.c1.ID, w.plus.ID)
	s.AddSubscription(w.c3.ID, w.basic.ID)
	s.ResetCalls()
	return w
}

func customers(store *testutil.Store) (*usecase.CustomerUseCase, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	gate := access.NewGate(store, zerolog.Nop())
	return usecase.NewCustomerUseCase(store, gate, metrics.NewReadMetrics(reg), zerolog.Nop()), reg
}

func ids(list []dto.CustomerResponse) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func TestCustomerList_AdminVeTodosEnOrdenDescendente(t *testing.T) {
	w := newWorld()
	uc, _ := customers(w.store)

	list := uc.List(context.Background(), session(w.admin.ID))
	assert.Equal(t, []string{w.c3.ID, w.c2.ID, w.c1.ID}, ids(list))

	require.NotNil(t, list[2].Profile)
	assert.Equal(t, "Cliente Uno", list[2].Profile.FullName)
	require.Len(t, list[2].Subscriptions, 2)
	assert.Nil(t, list[2].Subscriptions[0].Plan, "el listado general no adjunta planes")
	assert.Empty(t, list[1].Subscriptions)

	// Una consulta por tabla relacionada.
	assert.Equal(t, 1, w.store.Calls("customers.List"))
	assert.Equal(t, 1, w.store.Calls("profiles.ListByIDs"))
	assert.Equal(t, 1, w.store.Calls("subscriptions.ListByCustomerIDs"))
}

func TestCustomerList_TecnicoSoloVeLosSuyos(t *testing.T) {
	w := newWorld()
	uc, _ := customers(w.store)

	list := uc.List(context.Background(), session(w.techA.ID))
	assert.Equal(t, []string{w.c3.ID, w.c1.ID}, ids(list))
	assert.False(t, w.store.UsedTier(domain.TierService))
}

func TestCustomerList_SinSesionNoVeNada(t *testing.T) {
	w := newWorld()
	uc, _ := customers(w.store)

	list := uc.List(context.Background(), nil)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestCustomerList_VacioNoConsultaRelaciones(t *testing.T) {
	store := testutil.NewStore()
	admin := store.AddProfile(entity.RoleAdmin, "admin@conecta.pe", "Admin")
	uc, _ := customers(store)

	list := uc.List(context.Background(), session(admin.ID))
	assert.Empty(t, list)
	assert.Zero(t, store.Calls("profiles.ListByIDs"))
	assert.Zero(t, store.Calls("subscriptions.ListByCustomerIDs"))
}

func TestCustomerList_ErrorDevuelveVacioYCuenta(t *testing.T) {
	w := newWorld()
	w.store.FailOn("customers.List", errors.New("timeout"))
	uc, reg := customers(w.store)

	list := uc.List(context.Background(), session(w.admin.ID))
	assert.NotNil(t, list)
	assert.Empty(t, list)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "read_degraded_total", families[0].GetName())
}

func TestCustomerList_FalloDeRelacionNoPierdeClientes(t *testing.T) {
	w := newWorld()
	w.store.FailOn("profiles.ListByIDs", errors.New("timeout"))
	uc, _ := customers(w.store)

	list := uc.List(context.Background(), session(w.admin.ID))
	require.Len(t, list, 3)
	assert.Nil(t, list[0].Profile)
	assert.Len(t, list[2].Subscriptions, 2)
}

// En el nivel de usuario todas las consultas comparten transacción: el fallo de un lote
// relacionado no debe abortar las consultas siguientes ni el commit.
func TestCustomerList_FalloDeRelacionEnNivelDeUsuario(t *testing.T) {
	w := newWorld()
	w.store.FailOn("profiles.ListByIDs", errors.New("timeout"))
	uc, reg := customers(w.store)

	list := uc.List(context.Background(), session(w.techA.ID))
	require.Equal(t, []string{w.c3.ID, w.c1.ID}, ids(list))
	assert.Nil(t, list[1].Profile)
	assert.Len(t, list[1].Subscriptions, 2, "las suscripciones se leen aunque falló el lote de perfiles")
	assert.False(t, w.store.UsedTier(domain.TierService))
	assert.Equal(t, 1, w.store.Calls("subscriptions.ListByCustomerIDs"))
	assert.GreaterOrEqual(t, w.store.Calls("savepoint"), 2)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "read_degraded_total", families[0].GetName())
}

func TestListServedByWorker_FalloDePlanesConservaClientes(t *testing.T) {
	w := newWorld()
	w.store.FailOn("plans.ListByIDs", errors.New("timeout"))
	uc, _ := customers(w.store)

	list := uc.ListServedByWorker(context.Background(), session(w.techA.ID), w.techA.ID)
	require.Len(t, list, 2)
	for _, c := range list {
		assert.NotNil(t, c.Profile)
		assert.Nil(t, c.Plan)
	}
}

func TestCustomerGetByID(t *testing.T) {
	w := newWorld()
	uc, _ := customers(w.store)

	got := uc.GetByID(context.Background(), session(w.admin.ID), w.c2.ID)
	require.NotNil(t, got)
	assert.Equal(t, w.c2.CustomerCode, got.CustomerCode)
	assert.Equal(t, "c2@correo.pe", got.Profile.Email)

	assert.Nil(t, uc.GetByID(context.Background(), session(w.techA.ID), w.c2.ID), "el técnico A no atiende al cliente 2")
	assert.Nil(t, uc.GetByID(context.Background(), session(w.admin.ID), "no-existe"))
}

func TestCustomerUpdate(t *testing.T) {
	w := newWorld()
	uc, _ := customers(w.store)

	out, err := uc.Update(context.Background(), session(w.techA.ID), w.c1.ID, dto.UpdateCustomerRequest{City: strPtr("  Cusco ")})
	require.NoError(t, err)
	assert.Equal(t, "Cusco", out.City)
	assert.Equal(t, "Cusco", w.store.Customer(w.c1.ID).City)
}

func TestCustomerUpdate_Errores(t *testing.T) {
	w := newWorld()
	uc, _ := customers(w.store)
	ctx := context.Background()

	_, err := uc.Update(ctx, nil, w.c1.ID, dto.UpdateCustomerRequest{City: strPtr("Cusco")})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Update(ctx, session(w.admin.ID), w.c1.ID, dto.UpdateCustomerRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, session(w.admin.ID), w.c1.ID, dto.UpdateCustomerRequest{DNI: strPtr("12")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, session(w.techA.ID), w.c2.ID, dto.UpdateCustomerRequest{City: strPtr("Cusco")})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Cliente no encontrado", domain.MessageOf(err))
	assert.Equal(t, "Lima", w.store.Customer(w.c2.ID).City)
}

func TestCustomerDelete(t *testing.T) {
	w := newWorld()
	uc, _ := customers(w.store)
	ctx := context.Background()

	err := uc.Delete(ctx, session(w.techA.ID), w.c1.ID)
	require.ErrorIs(t, err, domain.ErrNotFound, "un técnico no puede borrar clientes")
	assert.NotNil(t, w.store.Customer(w.c1.ID))

	require.NoError(t, uc.Delete(ctx, session(w.admin.ID), w.c1.ID))
	assert.Nil(t, w.store.Customer(w.c1.ID))
	assert.Empty(t, w.store.SubscriptionsOf(w.c1.ID))
}

func TestCustomerListForWorker_AdjuntaPlanes(t *testing.T) {
	w := newWorld()
	uc, _ := customers(w.store)

	list := uc.ListForWorker(context.Background(), session(w.techA.ID), w.techA.ID)
	assert.Equal(t, []string{w.c3.ID, w.c1.ID}, ids(list))

	c1 := list[1]
	require.Len(t, c1.Subscriptions, 2)
	require.NotNil(t, c1.Subscriptions[0].Plan)
	assert.Equal(t, "Hogar Plus", c1.Subscriptions[0].Plan.Name, "la suscripción más reciente va primero")
	assert.Equal(t, 1, w.store.Calls("plans.ListByIDs"))
}

func TestCustomerListForWorker_PerfilSinTecnico(t *testing.T) {
	w := newWorld()
	uc, _ := customers(w.store)

	list := uc.ListForWorker(context.Background(), session(w.admin.ID), w.p1.ID)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.Zero(t, w.store.Calls("customers.List"))
}

func TestCustomerListServedByWorker_UneRegistradosYOrdenes(t *testing.T) {
	w := newWorld()
	w.store.AddTicket("Instalación", w.workerA.ID, w.c2.ID, "open", "high")
	w.store.AddTicket("Revisión", w.workerA.ID, w.c1.ID, "resolved", "low")
	uc, _ := customers(w.store)

	list := uc.ListServedByWorker(context.Background(), session(w.techA.ID), w.techA.ID)
	require.Len(t, list, 3)
	assert.Equal(t, w.c3.ID, list[0].ID)
	assert.Equal(t, w.c2.ID, list[1].ID)
	assert.Equal(t, w.c1.ID, list[2].ID)

	require.NotNil(t, list[2].Plan)
	assert.Equal(t, "Hogar Plus", list[2].Plan.Name)
	assert.Nil(t, list[1].Plan)
	assert.Equal(t, "Cliente Dos", list[1].Profile.FullName)
}

func TestCustomerCurrentPlan(t *testing.T) {
	w := newWorld()
	uc, _ := customers(w.store)
	ctx := context.Background()

	plan := uc.CurrentPlan(ctx, session(w.p1.ID), w.p1.ID)
	require.NotNil(t, plan)
	assert.Equal(t, "Hogar Plus", plan.Name)
	assert.Contains(t, plan.PriceLabel, "89")
}

// Escenario C: cliente sin suscripciones.
func TestCustomerCurrentPlan_SinSuscripcionEsNil(t *testing.T) {
	w := newWorld()
	uc, _ := customers(w.store)

	assert.Nil(t, uc.CurrentPlan(context.Background(), session(w.p2.ID), w.p2.ID))
	assert.Nil(t, uc.CurrentPlan(context.Background(), session(w.admin.ID), "sin-cliente"))
}

func TestCustomerAssignToWorker(t *testing.T) {
	w := newWorld()
	uc, _ := customers(w.store)

	err := uc.AssignToWorker(context.Background(), session(w.techA.ID), "  C2@Correo.PE ", w.techA.ID)
	require.NoError(t, err)
	assert.Equal(t, w.workerA.ID, *w.store.Customer(w.c2.ID).RegisteredBy)
	assert.True(t, w.store.UsedTier(domain.TierService))
}

// Escenario D: email sin perfil.
func TestCustomerAssignToWorker_PerfilInexistente(t *testing.T) {
	w := newWorld()
	uc, _ := customers(w.store)

	err := uc.AssignToWorker(context.Background(), session(w.techA.ID), "nadie@correo.pe", w.techA.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Perfil de cliente no encontrado", domain.MessageOf(err))
	assert.Zero(t, w.store.Calls("customers.SetRegisteredBy"))
}

func TestCustomerAssignToWorker_Errores(t *testing.T) {
	w := newWorld()
	uc, _ := customers(w.store)
	ctx := context.Background()

	tests := []struct {
		name    string
		sess    *domain.Session
		email   string
		worker  string
		kind    error
		message string
	}{
		{"sin sesión", nil, "c2@correo.pe", w.techA.ID, domain.ErrUnauthorized, "No autorizado"},
		{"datos incompletos", session(w.admin.ID), "", w.techA.ID, domain.ErrInvalidInput, "Datos incompletos"},
		{"email mal formado", session(w.admin.ID), "c1-correo.pe", w.techA.ID, domain.ErrInvalidInput, "Email inválido"},
		{"otro técnico", session(w.techB.ID), "c1@correo.pe", w.techA.ID, domain.ErrForbidden, "Solo puede asignarse clientes a sí mismo"},
		{"técnico inexistente", session(w.admin.ID), "c1@correo.pe", w.p1.ID, domain.ErrNotFound, "Técnico no encontrado"},
		{"perfil sin cliente", session(w.admin.ID), "ana@conecta.pe", w.techB.ID, domain.ErrNotFound, "Cliente no encontrado"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := uc.AssignToWorker(ctx, tt.sess, tt.email, tt.worker)
			require.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.message, domain.MessageOf(err))
		})
	}
	assert.Zero(t, w.store.Calls("customers.SetRegisteredBy"))
}
