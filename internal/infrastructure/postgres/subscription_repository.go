package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
)

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

const subscriptionColumns = "id, customer_id, plan_id, status, created_at"

// SubscriptionRepo implementación de SubscriptionRepository (usable con pool o tx).
type SubscriptionRepo struct {
	q Querier
}

// NewSubscriptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

// Create inserta una suscripción.
func (r *SubscriptionRepo) Create(ctx context.Context, s *entity.Subscription) (*entity.Subscription, error) {
	query := `
		INSERT INTO subscriptions (customer_id, plan_id, status)
		VALUES ($1, $2, $3)
		RETURNING ` + subscriptionColumns
	created, err := scanSubscription(r.q.QueryRow(ctx, query, s.CustomerID, s.PlanID, s.Status))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrInvalidInput
		}
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	return created, nil
}

// ListByCustomerIDs suscripciones de varios clientes en una sola consulta, más recientes primero.
func (r *SubscriptionRepo) ListByCustomerIDs(ctx context.Context, customerIDs []string) ([]*entity.Subscription, error) {
	customerIDs = dedupe(customerIDs)
	if len(customerIDs) == 0 {
		return nil, nil
	}
	query, args, err := psql.Select(subscriptionColumns).From("subscriptions").
		Where(sq.Eq{"customer_id": customerIDs}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build subscriptions query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// LatestByCustomer suscripción más reciente del cliente.
func (r *SubscriptionRepo) LatestByCustomer(ctx context.Context, customerID string) (*entity.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE customer_id = $1 ORDER BY created_at DESC LIMIT 1`
	s, err := scanSubscription(r.q.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest subscription: %w", err)
	}
	return s, nil
}

func scanSubscription(row pgx.Row) (*entity.Subscription, error) {
	var s entity.Subscription
	if err := row.Scan(&s.ID, &s.CustomerID, &s.PlanID, &s.Status, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
