package entity

import "time"

// Roles válidos para Profile.
const (
	RoleAdmin    = "admin"
	RoleWorker   = "worker"
	RoleCustomer = "customer"
)

// IsValidRole indica si role es uno de los roles conocidos.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleWorker, RoleCustomer:
		return true
	}
	return false
}

// Profile identidad raíz de la aplicación. ID es el id del usuario en el proveedor de identidad.
type Profile struct {
	ID        string
	Email     string
	FullName  string
	Phone     *string
	Role      string // admin, worker, customer; no cambia tras el alta
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
