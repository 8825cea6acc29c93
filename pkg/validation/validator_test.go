package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-api/internal/application/dto"
	"github.com/jhoicas/conecta-api/pkg/validation"
)

func TestStruct_RegistroTecnicoValido(t *testing.T) {
	in := dto.RegisterWorkerRequest{
		Email:    "tecnico@conecta.pe",
		Password: "secreto1",
		FullName: "Ana Quispe",
	}
	assert.NoError(t, validation.Struct(in))
}

func TestStruct_EmailInvalido(t *testing.T) {
	in := dto.RegisterWorkerRequest{Email: "no-es-email", Password: "secreto1", FullName: "Ana"}
	err := validation.Struct(in)
	require.Error(t, err)
	assert.Equal(t, "email debe ser un email válido", err.Error())
}

func TestStruct_PasswordCorto(t *testing.T) {
	in := dto.RegisterCustomerRequest{
		Email: "c@x.com", Password: "123", FullName: "Luis", Address: "Av. Arequipa 123", City: "Lima",
	}
	err := validation.Struct(in)
	require.Error(t, err)
	assert.Equal(t, "password debe tener al menos 6 caracteres", err.Error())
}

func TestStruct_DNIPeruano(t *testing.T) {
	in := dto.RegisterCustomerRequest{
		Email: "c@x.com", Password: "123456", FullName: "Luis", Address: "Av. Arequipa 123", City: "Lima",
		DNI: "1234",
	}
	err := validation.Struct(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dni")
}

func TestStruct_EstadoExterno(t *testing.T) {
	assert.NoError(t, validation.Struct(dto.UpdateServiceStatusRequest{Estado: "en_progreso"}))
	assert.Error(t, validation.Struct(dto.UpdateServiceStatusRequest{Estado: "archivado"}))
}
