package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-api/internal/application/access"
	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/internal/application/usecase"
	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/testutil"
)

func workers(store *testutil.Store) *usecase.WorkerUseCase {
	return usecase.NewWorkerUseCase(store, access.NewGate(store, zerolog.Nop()), nil, zerolog.Nop())
}

func TestWorkerList_AdminConPerfiles(t *testing.T) {
	w := newWorld()
	uc := workers(w.store)

	list := uc.List(context.Background(), session(w.admin.ID))
	require.Len(t, list, 2)
	assert.Equal(t, w.workerB.ID, list[0].ID)
	assert.Equal(t, "Beto Ruiz", list[0].Profile.FullName)
	assert.Equal(t, 1, w.store.Calls("profiles.ListByIDs"))
}

// Un técnico solo ve su propia fila, diga lo que diga el cliente sobre su rol.
func TestWorkerList_TecnicoSoloSeVeASiMismo(t *testing.T) {
	w := newWorld()
	uc := workers(w.store)

	list := uc.List(context.Background(), session(w.techA.ID))
	require.Len(t, list, 1)
	assert.Equal(t, w.workerA.ID, list[0].ID)
}

func TestWorkerListByPosition_SoloActivos(t *testing.T) {
	w := newWorld()
	extra := w.store.AddProfile("worker", "inactivo@conecta.pe", "Inactivo")
	inactive := w.store.AddWorker(extra.ID, "Instalador")
	uc := workers(w.store)
	off := false
	_, err := uc.Update(context.Background(), session(w.admin.ID), inactive.ID, dto.UpdateWorkerRequest{IsActive: &off})
	require.NoError(t, err)

	list := uc.ListByPosition(context.Background(), session(w.admin.ID), "Instalador")
	require.Len(t, list, 1)
	assert.Equal(t, w.workerA.ID, list[0].ID)

	assert.Empty(t, uc.ListByPosition(context.Background(), session(w.admin.ID), "  "))
}

func TestWorkerUpdate_SoloAdmin(t *testing.T) {
	w := newWorld()
	uc := workers(w.store)
	ctx := context.Background()

	_, err := uc.Update(ctx, session(w.techA.ID), w.workerA.ID, dto.UpdateWorkerRequest{Position: strPtr("Jefe")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := uc.Update(ctx, session(w.admin.ID), w.workerA.ID, dto.UpdateWorkerRequest{Department: strPtr("Redes")})
	require.NoError(t, err)
	assert.Equal(t, "Redes", *out.Department)

	_, err = uc.Update(ctx, session(w.admin.ID), "no-existe", dto.UpdateWorkerRequest{Department: strPtr("Redes")})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Técnico no encontrado", domain.MessageOf(err))
}
