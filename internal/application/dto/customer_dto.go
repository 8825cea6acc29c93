package dto

import "time"

// RegisterCustomerRequest body para POST /api/customers.
type RegisterCustomerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Address  string `json:"address" validate:"required,max=300"`
	City     string `json:"city" validate:"required,max=120"`
	DNI      string `json:"dni" validate:"omitempty,numeric,len=8"`
	PlanID   string `json:"plan_id,omitempty" validate:"omitempty,max=64"`
}

// UpdateCustomerRequest body para PATCH /api/customers/:id. Campos ausentes no cambian.
type UpdateCustomerRequest struct {
	DNI        *string `json:"dni,omitempty" validate:"omitempty,numeric,len=8"`
	Address    *string `json:"address,omitempty" validate:"omitempty,max=300"`
	City       *string `json:"city,omitempty" validate:"omitempty,max=120"`
	PostalCode *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

// AssignCustomerRequest body para POST /api/workers/:profileId/customers.
type AssignCustomerRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CustomerResponse cliente en respuestas. Profile y Subscriptions solo en listados agregados.
type CustomerResponse struct {
	ID            string                 `json:"id"`
	ProfileID     string                 `json:"profile_id"`
	CustomerCode  string                 `json:"customer_code"`
	DNI           *string                `json:"dni,omitempty"`
	Address       string                 `json:"address"`
	City          string                 `json:"city"`
	PostalCode    *string                `json:"postal_code,omitempty"`
	RegisteredBy  *string                `json:"registered_by,omitempty"`
	IsActive      bool                   `json:"is_active"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	Profile       *ProfileSummary        `json:"profile,omitempty"`
	Subscriptions []SubscriptionResponse `json:"subscriptions,omitempty"`
}

// SubscriptionResponse suscripción adjunta a un cliente; Plan solo en el listado del técnico.
type SubscriptionResponse struct {
	ID         string       `json:"id"`
	CustomerID string       `json:"customer_id"`
	PlanID     string       `json:"plan_id,omitempty"`
	Status     string       `json:"status"`
	Plan       *PlanSummary `json:"plan,omitempty"`
}
