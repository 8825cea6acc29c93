package entity

import "time"

// Worker técnico de campo; extensión 1:1 de un Profile con rol worker.
type Worker struct {
	ID           string
	ProfileID    string
	EmployeeCode string
	Department   *string
	Position     *string
	HireDate     time.Time
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WorkerPatch campos actualizables de un técnico. nil = sin cambio.
type WorkerPatch struct {
	Department *string
	Position   *string
	IsActive   *bool
}

// IsEmpty indica si el patch no modifica nada.
func (p WorkerPatch) IsEmpty() bool {
	return p.Department == nil && p.Position == nil && p.IsActive == nil
}
