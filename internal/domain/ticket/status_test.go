package ticket_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/ticket"
)

func TestExternalStatus_TablaCompleta(t *testing.T) {
	cases := map[ticket.Status]ticket.Estado{
		ticket.StatusOpen:       ticket.EstadoPendiente,
		ticket.StatusInProgress: ticket.EstadoEnProgreso,
		ticket.StatusResolved:   ticket.EstadoCompletado,
		ticket.StatusClosed:     ticket.EstadoCancelado,
	}
	for in, want := range cases {
		assert.Equal(t, want, ticket.ExternalStatus(in), "status %s", in)
	}
}

// Ida y vuelta para los cuatro estados: closed→cancelado→closed incluido.
func TestStatus_IdaYVuelta(t *testing.T) {
	for _, s := range ticket.Statuses() {
		back, err := ticket.InternalStatus(ticket.ExternalStatus(s))
		require.NoError(t, err)
		assert.Equal(t, s, back)
	}
}

func TestPriority_IdaYVuelta(t *testing.T) {
	for _, p := range ticket.Priorities() {
		back, err := ticket.InternalPriority(ticket.ExternalPriority(p))
		require.NoError(t, err)
		assert.Equal(t, p, back)
	}
	assert.Equal(t, ticket.PrioridadBaja, ticket.ExternalPriority(ticket.PriorityLow))
	assert.Equal(t, ticket.PrioridadUrgente, ticket.ExternalPriority(ticket.PriorityUrgent))
}

func TestInternalStatus_ValorDesconocido(t *testing.T) {
	_, err := ticket.InternalStatus("archivado")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestExternalStatus_ValorCorruptoSeMuestraCancelado(t *testing.T) {
	assert.Equal(t, ticket.EstadoCancelado, ticket.ExternalStatus("???"))
}

func TestInternalPriority_ValorDesconocido(t *testing.T) {
	_, err := ticket.InternalPriority("critica")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
