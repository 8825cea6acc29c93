package ports

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidCredentials credenciales rechazadas por el proveedor de identidad.
var ErrInvalidCredentials = errors.New("credenciales inválidas")

// IdentityUser usuario tal como lo devuelve el proveedor de identidad.
type IdentityUser struct {
	ID    string
	Email string
}

// AuthSession resultado de un inicio de sesión.
type AuthSession struct {
	User         IdentityUser
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// IdentityProvider define el puerto de salida hacia el proveedor de identidad
// (Supabase Auth o el proveedor local). Emite credenciales y sesiones; la
// aplicación nunca guarda contraseñas fuera de él.
//
// Los errores de CreateIdentity llevan el mensaje del proveedor (ej. email duplicado)
// en Error(); el flujo de alta lo muestra tal cual.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	CreateIdentity(ctx context.Context, email, password string, emailConfirmed bool) (*IdentityUser, error)
	DeleteIdentity(ctx context.Context, id string) error
	SignOut(ctx context.Context, accessToken string) error
}
