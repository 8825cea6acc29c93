package dto

import "time"

// ServiceResponse orden de servicio con el vocabulario externo (pendiente, en_progreso...).
type ServiceResponse struct {
	ID              string    `json:"id"`
	Tipo            string    `json:"tipo"`
	Descripcion     string    `json:"descripcion"`
	Estado          string    `json:"estado"`
	Prioridad       string    `json:"prioridad"`
	FechaProgramada time.Time `json:"fecha_programada"`
	CustomerID      *string   `json:"customer_id,omitempty"`
}

// UpdateServiceStatusRequest body para PATCH /api/services/:id/status.
type UpdateServiceStatusRequest struct {
	Estado string `json:"estado" validate:"required,oneof=pendiente en_progreso completado cancelado"`
}
