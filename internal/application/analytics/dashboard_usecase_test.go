package analytics_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-api/internal/application/access"
	"github.com/jhoicas/conecta-api/internal/application/analytics"
	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/application/usecase"
	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/testutil"
)

func newDashboard(store *testutil.Store) *analytics.DashboardUseCase {
	log := zerolog.Nop()
	gate := access.NewGate(store, log)
	return analytics.NewDashboardUseCase(
		gate,
		usecase.NewCustomerUseCase(store, gate, nil, log),
		usecase.NewWorkerUseCase(store, gate, nil, log),
		usecase.NewTicketUseCase(store, gate, nil, log),
	)
}

func TestAdminSummary(t *testing.T) {
	store := testutil.NewStore()
	admin := store.AddProfile(entity.RoleAdmin, "admin@conecta.pe", "Admin")
	tech := store.AddProfile(entity.RoleWorker, "tec@conecta.pe", "Técnico")
	w := store.AddWorker(tech.ID, "Instalador")
	for _, email := range []string{"a@correo.pe", "b@correo.pe"} {
		p := store.AddProfile(entity.RoleCustomer, email, email)
		store.AddCustomer(p.ID, w.ID)
	}
	uc := newDashboard(store)

	off := false
	_, err := usecase.NewWorkerUseCase(store, access.NewGate(store, zerolog.Nop()), nil, zerolog.Nop()).
		Update(context.Background(), &domain.Session{UserID: admin.ID}, w.ID, dto.UpdateWorkerRequest{IsActive: &off})
	require.NoError(t, err)

	out, err := uc.AdminSummary(context.Background(), &domain.Session{UserID: admin.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, out.TotalCustomers)
	assert.Equal(t, 2, out.ActiveCustomers)
	assert.Equal(t, 1, out.TotalWorkers)
	assert.Zero(t, out.ActiveWorkers)
	assert.Len(t, out.Customers, 2)
}

func TestAdminSummary_SoloAdmin(t *testing.T) {
	store := testutil.NewStore()
	tech := store.AddProfile(entity.RoleWorker, "tec@conecta.pe", "Técnico")
	uc := newDashboard(store)

	_, err := uc.AdminSummary(context.Background(), &domain.Session{UserID: tech.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.AdminSummary(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, "No autorizado", domain.MessageOf(err))
}

func TestWorkerSummary(t *testing.T) {
	store := testutil.NewStore()
	tech := store.AddProfile(entity.RoleWorker, "tec@conecta.pe", "Técnico")
	w := store.AddWorker(tech.ID, "Instalador")
	plan := store.AddPlan("Hogar Plus", "89.90", true)
	mine := store.AddCustomer(store.AddProfile(entity.RoleCustomer, "mio@correo.pe", "Mío").ID, w.ID)
	store.AddSubscription(mine.ID, plan.ID)
	served := store.AddCustomer(store.AddProfile(entity.RoleCustomer, "atendido@correo.pe", "Atendido").ID, "")
	store.AddCustomer(store.AddProfile(entity.RoleCustomer, "ajeno@correo.pe", "Ajeno").ID, "")
	store.AddTicket("Instalación", w.ID, served.ID, "in_progress", "medium")
	uc := newDashboard(store)

	out, err := uc.WorkerSummary(context.Background(), &domain.Session{UserID: tech.ID})
	require.NoError(t, err)

	require.Len(t, out.Services, 1)
	assert.Equal(t, "en_progreso", out.Services[0].Estado)
	assert.Equal(t, "media", out.Services[0].Prioridad)

	require.Len(t, out.Customers, 2)
	assert.Equal(t, served.ID, out.Customers[0].ID)
	assert.Nil(t, out.Customers[0].Plan)
	assert.Equal(t, mine.ID, out.Customers[1].ID)
	require.NotNil(t, out.Customers[1].Plan)
	assert.Equal(t, "Hogar Plus", out.Customers[1].Plan.Name)
}
