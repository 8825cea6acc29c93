package entity

import "time"

// Estados de Subscription.
const (
	SubscriptionActive    = "active"
	SubscriptionSuspended = "suspended"
	SubscriptionCancelled = "cancelled"
)

// Subscription contratación de un plan por un cliente. El plan vigente es la más reciente.
type Subscription struct {
	ID         string
	CustomerID string
	PlanID     string
	Status     string
	CreatedAt  time.Time
}
