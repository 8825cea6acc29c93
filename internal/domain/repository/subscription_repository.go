package repository

import (
	"context"

	"github.com/jhoicas/conecta-api/internal/domain/entity"
)

// SubscriptionRepository define el puerto de persistencia para Subscription.
type SubscriptionRepository interface {
	Create(ctx context.Context, s *entity.Subscription) (*entity.Subscription, error)
	ListByCustomerIDs(ctx context.Context, customerIDs []string) ([]*entity.Subscription, error)
	// LatestByCustomer devuelve la suscripción más reciente o nil.
	LatestByCustomer(ctx context.Context, customerID string) (*entity.Subscription, error)
}
