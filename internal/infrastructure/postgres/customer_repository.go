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

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = "id, profile_id, customer_code, dni, address, city, postal_code, registered_by, is_active, created_at, updated_at"

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente y devuelve la fila creada.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) (*entity.Customer, error) {
	query, args, err := psql.Insert("customers").
		Columns("profile_id", "customer_code", "dni", "address", "city", "postal_code", "registered_by", "is_active").
		Values(c.ProfileID, c.CustomerCode, c.DNI, c.Address, c.City, c.PostalCode, c.RegisteredBy, c.IsActive).
		Suffix("RETURNING " + customerColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert customer: %w", err)
	}
	created, err := scanCustomer(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return created, nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

// GetByProfileID obtiene el cliente de un perfil.
func (r *CustomerRepo) GetByProfileID(ctx context.Context, profileID string) (*entity.Customer, error) {
	return r.findOne(ctx, sq.Eq{"profile_id": profileID})
}

func (r *CustomerRepo) findOne(ctx context.Context, where sq.Eq) (*entity.Customer, error) {
	query, args, err := psql.Select(customerColumns).From("customers").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build customer query: %w", err)
	}
	c, err := scanCustomer(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// List lista clientes ordenados por created_at descendente.
func (r *CustomerRepo) List(ctx context.Context, f repository.CustomerFilter) ([]*entity.Customer, error) {
	b := psql.Select(customerColumns).From("customers").OrderBy("created_at DESC")
	if f.RegisteredBy != "" {
		b = b.Where(sq.Eq{"registered_by": f.RegisteredBy})
	}
	return r.list(ctx, b)
}

// ListByIDs obtiene los clientes de ids en una sola consulta.
func (r *CustomerRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Customer, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, psql.Select(customerColumns).From("customers").Where(sq.Eq{"id": ids}).OrderBy("created_at DESC"))
}

func (r *CustomerRepo) list(ctx context.Context, b sq.SelectBuilder) ([]*entity.Customer, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build customers query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update aplica solo los campos presentes en patch. ErrNotFound si no hay fila visible.
func (r *CustomerRepo) Update(ctx context.Context, id string, patch entity.CustomerPatch) (*entity.Customer, error) {
	b := psql.Update("customers").Set("updated_at", sq.Expr("NOW()")).Where(sq.Eq{"id": id})
	if patch.DNI != nil {
		b = b.Set("dni", *patch.DNI)
	}
	if patch.Address != nil {
		b = b.Set("address", *patch.Address)
	}
	if patch.City != nil {
		b = b.Set("city", *patch.City)
	}
	if patch.PostalCode != nil {
		b = b.Set("postal_code", *patch.PostalCode)
	}
	if patch.IsActive != nil {
		b = b.Set("is_active", *patch.IsActive)
	}
	query, args, err := b.Suffix("RETURNING " + customerColumns).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update customer: %w", err)
	}
	c, err := scanCustomer(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

// SetRegisteredBy asigna el técnico que atiende al cliente.
func (r *CustomerRepo) SetRegisteredBy(ctx context.Context, id, workerID string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE customers SET registered_by = $2, updated_at = NOW() WHERE id = $1`, id, workerID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("assign customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un cliente por ID; sus suscripciones caen en cascada.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(&c.ID, &c.ProfileID, &c.CustomerCode, &c.DNI, &c.Address, &c.City, &c.PostalCode,
		&c.RegisteredBy, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
