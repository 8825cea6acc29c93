package entity

import "time"

// Ticket orden de servicio técnico. Status y Priority usan el vocabulario interno
// (ver paquete domain/ticket para la traducción al vocabulario externo).
type Ticket struct {
	ID             string
	Title          string
	Description    string
	Status         string // open, in_progress, resolved, closed
	Priority       string // low, medium, high, urgent
	AssignedWorker *string
	CustomerID     *string
	CreatedAt      time.Time
}
