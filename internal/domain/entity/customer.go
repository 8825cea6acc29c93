package entity

import "time"

// Customer abonado del servicio; extensión 1:1 de un Profile con rol customer.
type Customer struct {
	ID           string
	ProfileID    string
	CustomerCode string
	DNI          *string
	Address      string
	City         string
	PostalCode   *string
	RegisteredBy *string // Worker.ID que lo dio de alta (opcional)
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CustomerPatch campos actualizables de un cliente. nil = sin cambio.
type CustomerPatch struct {
	DNI        *string
	Address    *string
	City       *string
	PostalCode *string
	IsActive   *bool
}

// IsEmpty indica si el patch no modifica nada.
func (p CustomerPatch) IsEmpty() bool {
	return p.DNI == nil && p.Address == nil && p.City == nil && p.PostalCode == nil && p.IsActive == nil
}
