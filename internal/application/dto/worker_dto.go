package dto

import "time"

// RegisterWorkerRequest body para POST /api/workers (solo admin).
type RegisterWorkerRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	FullName   string `json:"full_name" validate:"required,max=200"`
	Phone      string `json:"phone" validate:"omitempty,max=30"`
	Department string `json:"department" validate:"omitempty,max=120"`
	Position   string `json:"position" validate:"omitempty,max=120"`
}

// UpdateWorkerRequest body para PATCH /api/workers/:id.
type UpdateWorkerRequest struct {
	Department *string `json:"department,omitempty" validate:"omitempty,max=120"`
	Position   *string `json:"position,omitempty" validate:"omitempty,max=120"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

// WorkerResponse técnico en respuestas; Profile solo en listados agregados.
type WorkerResponse struct {
	ID           string          `json:"id"`
	ProfileID    string          `json:"profile_id"`
	EmployeeCode string          `json:"employee_code"`
	Department   *string         `json:"department,omitempty"`
	Position     *string         `json:"position,omitempty"`
	HireDate     string          `json:"hire_date"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Profile      *ProfileSummary `json:"profile,omitempty"`
}
