package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/conecta-api/internal/domain/entity"
	"github.com/jhoicas/conecta-api/internal/domain/repository"
)

var _ repository.PlanRepository = (*PlanRepo)(nil)

const planColumns = "id, name, price, features, speed, is_active, created_at"

// PlanRepo lectura de planes (usable con pool o tx).
type PlanRepo struct {
	q Querier
}

// NewPlanRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPlanRepository(q Querier) *PlanRepo {
	return &PlanRepo{q: q}
}

// GetByID obtiene un plan por ID.
func (r *PlanRepo) GetByID(ctx context.Context, id string) (*entity.Plan, error) {
	query, args, err := psql.Select(planColumns).From("plans").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build plan query: %w", err)
	}
	p, err := scanPlan(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		// un id que no es uuid tampoco existe
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

// ListByIDs obtiene los planes de ids en una sola consulta.
func (r *PlanRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Plan, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, psql.Select(planColumns).From("plans").Where(sq.Eq{"id": ids}))
}

// ListActive planes activos ordenados por precio ascendente.
func (r *PlanRepo) ListActive(ctx context.Context) ([]*entity.Plan, error) {
	return r.list(ctx, psql.Select(planColumns).From("plans").Where(sq.Eq{"is_active": true}).OrderBy("price ASC"))
}

func (r *PlanRepo) list(ctx context.Context, b sq.SelectBuilder) ([]*entity.Plan, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build plans query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()
	var list []*entity.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPlan(row pgx.Row) (*entity.Plan, error) {
	var p entity.Plan
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Features, &p.Speed, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
