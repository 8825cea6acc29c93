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

var _ repository.WorkerRepository = (*WorkerRepo)(nil)

const workerColumns = "id, profile_id, employee_code, department, position, hire_date, is_active, created_at, updated_at"

// WorkerRepo implementación de WorkerRepository (usable con pool o tx).
type WorkerRepo struct {
	q Querier
}

// NewWorkerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWorkerRepository(q Querier) *WorkerRepo {
	return &WorkerRepo{q: q}
}

// Create inserta el técnico; id y fechas los asigna la base.
func (r *WorkerRepo) Create(ctx context.Context, w *entity.Worker) (*entity.Worker, error) {
	query, args, err := psql.Insert("workers").
		Columns("profile_id", "employee_code", "department", "position", "hire_date", "is_active").
		Values(w.ProfileID, w.EmployeeCode, w.Department, w.Position, w.HireDate, w.IsActive).
		Suffix("RETURNING " + workerColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert worker: %w", err)
	}
	created, err := scanWorker(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert worker: %w", err)
	}
	return created, nil
}

// GetByProfileID obtiene el técnico de un perfil.
func (r *WorkerRepo) GetByProfileID(ctx context.Context, profileID string) (*entity.Worker, error) {
	query, args, err := psql.Select(workerColumns).From("workers").Where(sq.Eq{"profile_id": profileID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build worker query: %w", err)
	}
	w, err := scanWorker(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get worker: %w", err)
	}
	return w, nil
}

// List lista técnicos ordenados por created_at descendente.
func (r *WorkerRepo) List(ctx context.Context, f repository.WorkerFilter) ([]*entity.Worker, error) {
	b := psql.Select(workerColumns).From("workers").OrderBy("created_at DESC")
	if f.Position != "" {
		b = b.Where(sq.Eq{"position": f.Position})
	}
	if f.ActiveOnly {
		b = b.Where(sq.Eq{"is_active": true})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build workers query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

// Update aplica solo los campos presentes en patch. ErrNotFound si no hay fila visible.
func (r *WorkerRepo) Update(ctx context.Context, id string, patch entity.WorkerPatch) (*entity.Worker, error) {
	b := psql.Update("workers").Set("updated_at", sq.Expr("NOW()")).Where(sq.Eq{"id": id})
	if patch.Department != nil {
		b = b.Set("department", *patch.Department)
	}
	if patch.Position != nil {
		b = b.Set("position", *patch.Position)
	}
	if patch.IsActive != nil {
		b = b.Set("is_active", *patch.IsActive)
	}
	query, args, err := b.Suffix("RETURNING " + workerColumns).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update worker: %w", err)
	}
	w, err := scanWorker(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update worker: %w", err)
	}
	return w, nil
}

func scanWorker(row pgx.Row) (*entity.Worker, error) {
	var w entity.Worker
	err := row.Scan(&w.ID, &w.ProfileID, &w.EmployeeCode, &w.Department, &w.Position,
		&w.HireDate, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
