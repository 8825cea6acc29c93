package testutil_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
	"github.com/jhoicas/conecta-api/internal/testutil"
)

func TestRun_NivelUsuarioAbortaTrasUnFallo(t *testing.T) {
	store := testutil.NewStore()
	admin := store.AddProfile(entity.RoleAdmin, "admin@conecta.pe", "Admin")
	store.FailOn("profiles.ListByIDs", errors.New("timeout"))

	var after error
	err := store.Run(context.Background(), domain.UserAccess(admin.ID), func(r repository.Repositories) error {
		_, _ = r.Profiles.ListByIDs(context.Background(), []string{admin.ID})
		_, after = r.Profiles.GetByID(context.Background(), admin.ID)
		return nil
	})
	assert.ErrorIs(t, after, testutil.ErrTxAborted)
	assert.ErrorIs(t, err, testutil.ErrTxAborted)
}

func TestRun_SavepointContieneElFallo(t *testing.T) {
	store := testutil.NewStore()
	admin := store.AddProfile(entity.RoleAdmin, "admin@conecta.pe", "Admin")
	store.FailOn("profiles.ListByIDs", errors.New("timeout"))

	var got *entity.Profile
	err := store.Run(context.Background(), domain.UserAccess(admin.ID), func(r repository.Repositories) error {
		spErr := r.Isolated(context.Background(), func(r repository.Repositories) error {
			_, err := r.Profiles.ListByIDs(context.Background(), []string{admin.ID})
			return err
		})
		require.Error(t, spErr)
		var err error
		got, err = r.Profiles.GetByID(context.Background(), admin.ID)
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, admin.ID, got.ID)
}

func TestRun_NivelServicioNoEmulaTransaccion(t *testing.T) {
	store := testutil.NewStore()
	admin := store.AddProfile(entity.RoleAdmin, "admin@conecta.pe", "Admin")
	store.FailOn("profiles.ListByIDs", errors.New("timeout"))

	err := store.Run(context.Background(), domain.ServiceAccess(), func(r repository.Repositories) error {
		_, _ = r.Profiles.ListByIDs(context.Background(), []string{admin.ID})
		p, err := r.Profiles.GetByID(context.Background(), admin.ID)
		assert.NotNil(t, p)
		return err
	})
	assert.NoError(t, err)
}
